package security

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/Binduvarsha23/securevaultBackend/internal/hash"
	"github.com/Binduvarsha23/securevaultBackend/internal/notify"
)

const (
	defaultResetTokenTTL    = 10 * time.Minute
	defaultResetTokenDigits = 6
)

// Options tune the engine. Zero values select the defaults used in
// production; Now exists so tests can control the clock.
type Options struct {
	TOTP             TOTPConfig
	ResetTokenTTL    time.Duration
	ResetTokenDigits int
	Now              func() time.Time
}

// Engine coordinates the security-config lifecycle, factor verification,
// TOTP provisioning, the security-question challenge, and the reset-token
// flow. It is safe for concurrent use; all state lives in the store.
type Engine struct {
	store       *Store
	hasher      hash.Hasher
	sender      notify.Sender
	totp        *totpManager
	resetTTL    time.Duration
	resetDigits int
	now         func() time.Time
}

// NewEngine wires an Engine from its collaborators.
func NewEngine(store *Store, hasher hash.Hasher, sender notify.Sender, opts Options) *Engine {
	if opts.TOTP.Skew == 0 {
		opts.TOTP.Skew = 1
	}
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = defaultResetTokenTTL
	}
	if opts.ResetTokenDigits <= 0 {
		opts.ResetTokenDigits = defaultResetTokenDigits
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Engine{
		store:       store,
		hasher:      hasher,
		sender:      sender,
		totp:        newTOTPManager(opts.TOTP),
		resetTTL:    opts.ResetTokenTTL,
		resetDigits: opts.ResetTokenDigits,
		now:         opts.Now,
	}
}

// numericCode draws each digit independently from crypto/rand so the value
// carries no modulo bias.
func numericCode(digits int) (string, error) {
	var b strings.Builder
	b.Grow(digits)

	max := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
