package security

import (
	"context"
	"fmt"
)

// RequestMethodReset issues a fresh reset token for the user and mails the
// plaintext code to deliveryAddress. Only the hash is persisted, alongside
// an expiry resetTTL from now; a user can hold at most one outstanding
// token, so re-requesting overwrites the previous one.
//
// Delivery failure is reported as ErrDeliveryFailed but the persisted token
// stays in place: the caller may retry entry or simply re-request, which
// invalidates this code.
func (e *Engine) RequestMethodReset(ctx context.Context, userID, deliveryAddress string) error {
	if userID == "" || deliveryAddress == "" {
		return fmt.Errorf("%w: user id and delivery address required", ErrInvalidInput)
	}

	code, err := numericCode(e.resetDigits)
	if err != nil {
		return err
	}
	digest, err := e.hasher.Hash(code)
	if err != nil {
		return err
	}

	cfg, err := e.store.Get(ctx, userID)
	if err == ErrConfigNotFound {
		cfg = &Config{UserID: userID}
	} else if err != nil {
		return err
	}

	now := e.now()
	expiry := now.Add(e.resetTTL)
	cfg.PasswordResetToken = digest
	cfg.PasswordResetTokenExpiry = &expiry
	cfg.UpdatedAt = now

	if err := e.store.Save(ctx, cfg); err != nil {
		return err
	}

	body := resetMailBody(code, e.resetTTL)
	if err := e.sender.Send(ctx, deliveryAddress, "Your SecureVault reset code", body); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// ResetMethodWithToken consumes an outstanding reset token and writes a new
// value for one hash-backed factor. The token must hash-match and still be
// inside its window; an expired pair is cleared on sight so it can never be
// retried. On success the new value is hashed server-side, the factor is
// enabled, and both token fields are cleared, making the token single-use.
func (e *Engine) ResetMethodWithToken(ctx context.Context, userID, token string, method Method, newValue string) error {
	if userID == "" || token == "" || newValue == "" {
		return fmt.Errorf("%w: user id, token and new value required", ErrInvalidInput)
	}

	cfg, err := e.store.Get(ctx, userID)
	if err == ErrConfigNotFound {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}

	if cfg.PasswordResetToken == "" || cfg.PasswordResetTokenExpiry == nil {
		return ErrInvalidResetToken
	}
	if cfg.PasswordResetTokenExpiry.Before(e.now()) {
		cfg.PasswordResetToken = ""
		cfg.PasswordResetTokenExpiry = nil
		cfg.UpdatedAt = e.now()
		if serr := e.store.Save(ctx, cfg); serr != nil {
			return serr
		}
		return ErrInvalidResetToken
	}

	ok, err := e.hasher.Verify(token, cfg.PasswordResetToken)
	if err != nil || !ok {
		return ErrInvalidResetToken
	}

	switch method {
	case MethodPassword, MethodPIN, MethodPattern:
	default:
		// The token survives a bad method type; only a successful reset
		// consumes it.
		return ErrInvalidMethodType
	}

	digest, err := e.hasher.Hash(newValue)
	if err != nil {
		return err
	}
	cfg.setHashField(method, digest)

	cfg.PasswordResetToken = ""
	cfg.PasswordResetTokenExpiry = nil
	cfg.UpdatedAt = e.now()

	return e.store.Save(ctx, cfg)
}
