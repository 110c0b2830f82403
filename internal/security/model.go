package security

import "time"

// Method names one independent authentication factor.
type Method string

const (
	MethodPassword  Method = "password"
	MethodPIN       Method = "pin"
	MethodPattern   Method = "pattern"
	MethodBiometric Method = "biometric"
)

// Question is one stored security question with its pre-hashed answer.
type Question struct {
	Question   string `json:"question"`
	AnswerHash string `json:"answerHash"`
}

// Config is the per-user record aggregating all factor states. One document
// per user, keyed by user id. Hash and secret fields are opaque to the
// engine; the timestamps are informational and never drive authorization.
type Config struct {
	UserID string `json:"userId"`

	PasswordHash    string `json:"passwordHash,omitempty"`
	PasswordEnabled bool   `json:"passwordEnabled"`

	PinHash    string `json:"pinHash,omitempty"`
	PinEnabled bool   `json:"pinEnabled"`

	PatternHash    string `json:"patternHash,omitempty"`
	PatternEnabled bool   `json:"patternEnabled"`

	TotpSecret  string `json:"totpSecret,omitempty"`
	TotpEnabled bool   `json:"totpEnabled"`

	BiometricEnabled     bool     `json:"biometricEnabled"`
	BiometricCredentials []string `json:"biometricCredentials,omitempty"`

	// SecurityQuestions holds exactly zero or three entries; partial sets are
	// never persisted.
	SecurityQuestions              []Question `json:"securityQuestions,omitempty"`
	SecurityQuestionsLastUpdatedAt *time.Time `json:"securityQuestionsLastUpdatedAt,omitempty"`

	// PasswordResetToken and PasswordResetTokenExpiry are set together by a
	// reset request and cleared together the moment the token is consumed or
	// found expired. At most one outstanding reset per user.
	PasswordResetToken       string     `json:"passwordResetToken,omitempty"`
	PasswordResetTokenExpiry *time.Time `json:"passwordResetTokenExpiry,omitempty"`

	LastVerifiedAt *time.Time `json:"lastVerifiedAt,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Patch carries a sparse per-factor update. A nil field means the caller did
// not mention it; JSON decoding of the PUT body produces exactly that
// tri-state. Unknown keys in the request body are dropped by decoding, which
// matches the intended "ignore unrecognized fields" behavior.
type Patch struct {
	PasswordEnabled *bool   `json:"passwordEnabled,omitempty"`
	PasswordHash    *string `json:"passwordHash,omitempty"`

	PinEnabled *bool   `json:"pinEnabled,omitempty"`
	PinHash    *string `json:"pinHash,omitempty"`

	PatternEnabled *bool   `json:"patternEnabled,omitempty"`
	PatternHash    *string `json:"patternHash,omitempty"`

	BiometricEnabled     *bool    `json:"biometricEnabled,omitempty"`
	BiometricCredentials []string `json:"biometricCredentials,omitempty"`
}

// hashField returns the stored digest and enabled flag for a hash-backed
// factor. TOTP and biometric are not hash-backed and report absent.
func (c *Config) hashField(m Method) (digest string, enabled bool, ok bool) {
	switch m {
	case MethodPassword:
		return c.PasswordHash, c.PasswordEnabled, true
	case MethodPIN:
		return c.PinHash, c.PinEnabled, true
	case MethodPattern:
		return c.PatternHash, c.PatternEnabled, true
	}
	return "", false, false
}

func (c *Config) setHashField(m Method, digest string) bool {
	switch m {
	case MethodPassword:
		c.PasswordHash = digest
		c.PasswordEnabled = true
	case MethodPIN:
		c.PinHash = digest
		c.PinEnabled = true
	case MethodPattern:
		c.PatternHash = digest
		c.PatternEnabled = true
	default:
		return false
	}
	return true
}
