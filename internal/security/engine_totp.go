package security

import (
	"context"
	"fmt"
)

// TOTPProvision is the result of enrolling an authenticator: the shared
// secret for manual entry and the otpauth URI for QR rendering.
type TOTPProvision struct {
	Secret string
	URI    string
}

// SetupTOTP provisions a fresh TOTP secret for the user, persists it, and
// enables the factor. The secret is independent of any earlier one, so
// re-running invalidates previously enrolled authenticators. Fails with
// ErrConfigNotFound when the user has no config; TOTP enrollment does not
// upsert.
//
// accountLabel goes into the provisioning URI (typically the user's email);
// empty falls back to the user id.
func (e *Engine) SetupTOTP(ctx context.Context, userID, accountLabel string) (*TOTPProvision, error) {
	cfg, err := e.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	_, secret, err := e.totp.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("totp secret generation: %w", err)
	}

	cfg.TotpSecret = secret
	cfg.TotpEnabled = true
	cfg.UpdatedAt = e.now()

	if err := e.store.Save(ctx, cfg); err != nil {
		return nil, err
	}

	if accountLabel == "" {
		accountLabel = userID
	}
	return &TOTPProvision{
		Secret: secret,
		URI:    e.totp.ProvisionURI(secret, accountLabel),
	}, nil
}

// VerifyTOTP checks a submitted code against the stored secret, accepting
// the current 30-second step and one adjacent step in each direction. A user
// with no config, a disabled factor, and a missing secret all report
// ErrTOTPNotConfigured.
func (e *Engine) VerifyTOTP(ctx context.Context, userID, code string) error {
	cfg, err := e.store.Get(ctx, userID)
	if err == ErrConfigNotFound {
		return ErrTOTPNotConfigured
	}
	if err != nil {
		return err
	}
	if !cfg.TotpEnabled || cfg.TotpSecret == "" {
		return ErrTOTPNotConfigured
	}

	secret, err := decodeTOTPSecret(cfg.TotpSecret)
	if err != nil {
		return fmt.Errorf("%w: corrupt totp secret: %v", ErrStoreUnavailable, err)
	}

	ok, _, err := e.totp.VerifyCode(secret, code, e.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrTOTPInvalid
	}

	now := e.now()
	cfg.LastVerifiedAt = &now
	return e.store.Save(ctx, cfg)
}
