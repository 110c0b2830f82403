package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Binduvarsha23/securevaultBackend/internal/security"
)

// SecurityHandler serves the /api/security routes.
type SecurityHandler struct {
	engine *security.Engine
	logger *zap.Logger
}

// NewSecurityHandler wires the handler.
func NewSecurityHandler(engine *security.Engine, logger *zap.Logger) *SecurityHandler {
	return &SecurityHandler{engine: engine, logger: logger}
}

// GetConfig responds 200 either way: with the config, or with a
// setupRequired sentinel when the user has not created one. Reading never
// creates state.
func (h *SecurityHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	cfg, err := h.engine.GetConfig(r.Context(), userID)
	if err == security.ErrConfigNotFound {
		writeJSON(w, http.StatusOK, map[string]any{
			"setupRequired": true,
			"message":       "Security config not found. User has not set up anything yet.",
			"config":        nil,
		})
		return
	}
	if err != nil {
		h.logger.Error("fetch config", zap.String("userId", userID), zap.Error(err))
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"setupRequired": false,
		"config":        cfg,
	})
}

func (h *SecurityHandler) CreateConfig(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cfg, err := h.engine.CreateConfig(r.Context(), body.UserID)
	if err != nil {
		if err != security.ErrConfigExists {
			h.logger.Error("create config", zap.String("userId", body.UserID), zap.Error(err))
		}
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

func (h *SecurityHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var patch security.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cfg, err := h.engine.UpdateConfig(r.Context(), userID, patch)
	if err != nil {
		h.logger.Warn("update config", zap.String("userId", userID), zap.Error(err))
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *SecurityHandler) VerifyMethod(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
		Method string `json:"method"`
		Value  string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.engine.VerifyMethod(r.Context(), body.UserID, security.Method(body.Method), body.Value)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *SecurityHandler) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	// Optional label for the authenticator entry; defaults to the user id.
	var body struct {
		Email string `json:"email"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	provision, err := h.engine.SetupTOTP(r.Context(), userID, body.Email)
	if err != nil {
		h.logger.Warn("setup totp", zap.String("userId", userID), zap.Error(err))
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"secret":     provision.Secret,
		"otpauthUrl": provision.URI,
	})
}

func (h *SecurityHandler) VerifyTOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
		Token  string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.engine.VerifyTOTP(r.Context(), body.UserID, body.Token); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Verification successful!"})
}

func (h *SecurityHandler) SetSecurityQuestions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var body struct {
		Questions []security.Question `json:"questions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cfg, err := h.engine.SetSecurityQuestions(r.Context(), userID, body.Questions)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *SecurityHandler) VerifySecurityAnswer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID   string `json:"userId"`
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.engine.VerifySecurityAnswer(r.Context(), body.UserID, body.Question, body.Answer); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *SecurityHandler) RequestMethodReset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.engine.RequestMethodReset(r.Context(), body.UserID, body.Email); err != nil {
		h.logger.Warn("request method reset", zap.String("userId", body.UserID), zap.Error(err))
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Reset code sent"})
}

func (h *SecurityHandler) ResetMethodWithToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID     string `json:"userId"`
		Token      string `json:"token"`
		MethodType string `json:"methodType"`
		NewValue   string `json:"newValue"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.engine.ResetMethodWithToken(r.Context(), body.UserID, body.Token, security.Method(body.MethodType), body.NewValue)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": body.MethodType + " has been reset successfully.",
	})
}
