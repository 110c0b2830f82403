// Package httpapi is the JSON surface over the security engine, the vault
// store, and the mailer. Handlers translate engine errors into statuses and
// never leak which authentication check failed beyond the status class.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Binduvarsha23/securevaultBackend/internal/security"
	"github.com/Binduvarsha23/securevaultBackend/internal/vault"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeEngineError maps engine failures onto the API contract. Every
// authentication failure of the same class shares one status and one body
// shape.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, security.ErrConfigNotFound):
		writeMessage(w, http.StatusNotFound, "Config not found")
	case errors.Is(err, security.ErrConfigExists):
		writeMessage(w, http.StatusBadRequest, "Already exists")
	case errors.Is(err, security.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, security.ErrQuestionsNotConfigured):
		writeMessage(w, http.StatusNotFound, "No security questions set")
	case errors.Is(err, security.ErrIncorrectAnswer):
		writeMessage(w, http.StatusUnauthorized, "Incorrect answer")
	case errors.Is(err, security.ErrTOTPNotConfigured):
		writeMessage(w, http.StatusBadRequest, "TOTP not configured")
	case errors.Is(err, security.ErrTOTPInvalid):
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired code")
	case errors.Is(err, security.ErrInvalidResetToken):
		writeMessage(w, http.StatusBadRequest, "Invalid or expired reset code")
	case errors.Is(err, security.ErrInvalidMethodType):
		writeMessage(w, http.StatusBadRequest, "Invalid method type")
	case errors.Is(err, security.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, security.ErrDeliveryFailed):
		writeMessage(w, http.StatusInternalServerError, "Failed to deliver reset code")
	default:
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}

func writeVaultError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, vault.ErrItemNotFound):
		writeMessage(w, http.StatusNotFound, "Vault not found")
	case errors.Is(err, vault.ErrInvalidItem):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}
