package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Binduvarsha23/securevaultBackend/internal/notify"
)

// EmailHandler serves POST /api/send-totp: it mails a one-time login code
// the client already generated to the given address.
type EmailHandler struct {
	sender notify.Sender
	logger *zap.Logger
}

// NewEmailHandler wires the handler.
func NewEmailHandler(sender notify.Sender, logger *zap.Logger) *EmailHandler {
	return &EmailHandler{sender: sender, logger: logger}
}

func (h *EmailHandler) SendTOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		TOTP  string `json:"totp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.TOTP == "" {
		writeMessage(w, http.StatusBadRequest, "Email and TOTP required")
		return
	}

	msg := fmt.Sprintf(`
      <div style="font-family:sans-serif;">
        <h2>SecureVault Login Verification</h2>
        <p>Your one-time code is:</p>
        <div style="font-size:24px; font-weight:bold; color:#2c3e50;">%s</div>
        <p>This code expires in 60 seconds. Do not share it.</p>
      </div>`, body.TOTP)

	if err := h.sender.Send(r.Context(), body.Email, "Your SecureVault Verification Code", msg); err != nil {
		h.logger.Error("send totp mail", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to send TOTP")
		return
	}
	writeMessage(w, http.StatusOK, "TOTP email sent")
}
