package security

import "errors"

var (
	// ErrConfigNotFound is returned when no security config exists for the user.
	ErrConfigNotFound = errors.New("security config not found")
	// ErrConfigExists is returned by CreateConfig when a config is already present.
	ErrConfigExists = errors.New("security config already exists")
	// ErrInvalidInput is returned for malformed requests (wrong question count,
	// a factor enabled with no stored hash, missing identifiers).
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is returned when a factor check fails, whether the
	// factor is disabled, has no stored hash, or the value does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrQuestionsNotConfigured is returned when no security questions are set.
	ErrQuestionsNotConfigured = errors.New("no security questions set")
	// ErrIncorrectAnswer is returned when no stored question/answer pair matches.
	ErrIncorrectAnswer = errors.New("incorrect answer")
	// ErrTOTPNotConfigured is returned when TOTP is disabled or has no secret.
	ErrTOTPNotConfigured = errors.New("totp not configured")
	// ErrTOTPInvalid is returned for a code outside the accepted step window.
	ErrTOTPInvalid = errors.New("invalid totp code")
	// ErrInvalidResetToken covers every reset-token failure: no outstanding
	// token, expired token, or hash mismatch. Callers must not be able to tell
	// those apart.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	// ErrInvalidMethodType is returned when a reset names a factor that cannot
	// be re-established with a token (anything but password, pin, pattern).
	ErrInvalidMethodType = errors.New("invalid method type")
	// ErrDeliveryFailed is returned when the notification channel rejects the
	// reset code. The persisted token is intentionally not rolled back.
	ErrDeliveryFailed = errors.New("delivery failed")
	// ErrStoreUnavailable wraps persistence failures.
	ErrStoreUnavailable = errors.New("store unavailable")
)
