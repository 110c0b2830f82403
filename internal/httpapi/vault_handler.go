package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Binduvarsha23/securevaultBackend/internal/vault"
)

// VaultHandler serves the /api/vault routes.
type VaultHandler struct {
	store  *vault.Store
	logger *zap.Logger
}

// NewVaultHandler wires the handler.
func NewVaultHandler(store *vault.Store, logger *zap.Logger) *VaultHandler {
	return &VaultHandler{store: store, logger: logger}
}

func (h *VaultHandler) Create(w http.ResponseWriter, r *http.Request) {
	var item vault.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.store.Create(r.Context(), item)
	if err != nil {
		h.logger.Error("create vault item", zap.String("userId", item.UserID), zap.Error(err))
		writeVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *VaultHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	items, err := h.store.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("list vault items", zap.String("userId", userID), zap.Error(err))
		writeVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *VaultHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch vault.Item
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		writeVaultError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *VaultHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.Delete(r.Context(), id); err != nil {
		writeVaultError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Vault deleted")
}

// Export serves the user's items as a JSON attachment. The values are
// client-encrypted already, so the download is as opaque as the store.
func (h *VaultHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	items, err := h.store.Export(r.Context(), userID)
	if err != nil {
		h.logger.Error("export vault", zap.String("userId", userID), zap.Error(err))
		writeVaultError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=vault_%s.json", userID))
	writeJSON(w, http.StatusOK, items)
}

func (h *VaultHandler) Import(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string       `json:"userId"`
		Vaults []vault.Item `json:"vaults"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid vault data: vaults must be an array")
		return
	}
	if body.UserID == "" {
		writeMessage(w, http.StatusBadRequest, "userId is required")
		return
	}
	if len(body.Vaults) == 0 {
		writeMessage(w, http.StatusBadRequest, "No vaults to import")
		return
	}

	result, err := h.store.Import(r.Context(), body.UserID, body.Vaults)
	if err != nil {
		h.logger.Error("import vault", zap.String("userId", body.UserID), zap.Error(err))
		writeVaultError(w, err)
		return
	}

	message := "Vaults imported successfully"
	if result.Skipped > 0 {
		message = fmt.Sprintf("%s (%d skipped - duplicates or invalid)", message, result.Skipped)
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": message,
		"count":   result.Created,
		"skipped": result.Skipped,
	})
}
