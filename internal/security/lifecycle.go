package security

import (
	"context"
	"fmt"
)

// GetConfig returns the user's config, or ErrConfigNotFound when the user
// has not set anything up yet. Reading never creates a record.
func (e *Engine) GetConfig(ctx context.Context, userID string) (*Config, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	return e.store.Get(ctx, userID)
}

// CreateConfig creates an empty config for userID with every factor
// disabled. A second create for the same user fails with ErrConfigExists.
func (e *Engine) CreateConfig(ctx context.Context, userID string) (*Config, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}

	cfg := &Config{
		UserID:    userID,
		UpdatedAt: e.now(),
	}
	if err := e.store.Create(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UpdateConfig applies a sparse patch to the user's config and bumps
// updatedAt. Unlike CreateConfig it upserts: patching a user with no config
// creates one. That asymmetry is deliberate and mirrors the clients, which
// patch factors without a prior explicit create.
//
// For each factor named in the patch the enabled flag is set, and an
// accompanying non-empty hash replaces the stored one. Enabling a
// hash-backed factor that would end up with no stored hash is rejected, so
// enabled always implies a non-empty hash after this call. Disabling
// biometric clears its credential list.
func (e *Engine) UpdateConfig(ctx context.Context, userID string, patch Patch) (*Config, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}

	cfg, err := e.store.Get(ctx, userID)
	if err == ErrConfigNotFound {
		cfg = &Config{UserID: userID}
	} else if err != nil {
		return nil, err
	}

	if err := applyPatch(cfg, patch); err != nil {
		return nil, err
	}
	cfg.UpdatedAt = e.now()

	if err := e.store.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyPatch(cfg *Config, patch Patch) error {
	type hashed struct {
		method  Method
		enabled *bool
		value   *string
		digest  *string
		flag    *bool
	}
	factors := []hashed{
		{MethodPassword, patch.PasswordEnabled, patch.PasswordHash, &cfg.PasswordHash, &cfg.PasswordEnabled},
		{MethodPIN, patch.PinEnabled, patch.PinHash, &cfg.PinHash, &cfg.PinEnabled},
		{MethodPattern, patch.PatternEnabled, patch.PatternHash, &cfg.PatternHash, &cfg.PatternEnabled},
	}

	for _, f := range factors {
		if f.enabled == nil {
			continue
		}
		if f.value != nil && *f.value != "" {
			*f.digest = *f.value
		}
		if *f.enabled && *f.digest == "" {
			return fmt.Errorf("%w: %s enabled without a hash", ErrInvalidInput, f.method)
		}
		*f.flag = *f.enabled
	}

	if patch.BiometricEnabled != nil {
		cfg.BiometricEnabled = *patch.BiometricEnabled
		if !*patch.BiometricEnabled {
			cfg.BiometricCredentials = nil
		} else if patch.BiometricCredentials != nil {
			cfg.BiometricCredentials = patch.BiometricCredentials
		}
	}

	return nil
}
