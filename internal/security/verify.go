package security

import (
	"context"
)

// VerifyMethod checks one submitted factor value for the user.
//
// Password, PIN, and pattern compare the raw value against the stored digest
// through the injected hasher; a disabled factor, a missing digest, an
// unknown method, and a plain mismatch all collapse into
// ErrInvalidCredentials so callers cannot probe which factors exist.
//
// Biometric is different on purpose: the cryptographic assertion is checked
// by the client platform, so reaching this call at all is treated as proof.
func (e *Engine) VerifyMethod(ctx context.Context, userID string, method Method, value string) error {
	cfg, err := e.store.Get(ctx, userID)
	if err != nil {
		return err
	}

	matched := false
	switch method {
	case MethodBiometric:
		matched = true
	default:
		digest, enabled, ok := cfg.hashField(method)
		if ok && enabled && digest != "" {
			good, verr := e.hasher.Verify(value, digest)
			matched = verr == nil && good
		}
	}

	if !matched {
		return ErrInvalidCredentials
	}

	now := e.now()
	cfg.LastVerifiedAt = &now
	return e.store.Save(ctx, cfg)
}
