// Package hash defines the digest capability injected into the security
// engine. Clients submit factor values already hashed with the same scheme,
// so the server-side implementation must stay compatible with theirs.
package hash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes plaintext values and verifies them against stored digests.
// Verify must take the same code path for match and mismatch so response
// timing does not reveal which digest was compared.
type Hasher interface {
	Hash(value string) (string, error)
	Verify(value, digest string) (bool, error)
}

// Bcrypt is the default Hasher. bcrypt digests are what the clients produce
// for password/PIN/pattern enrollment, and CompareHashAndPassword already
// does a constant-time comparison of the derived key.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a Bcrypt hasher. Costs outside bcrypt's supported range
// fall back to the library default.
func NewBcrypt(cost int) Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Bcrypt{cost: cost}
}

func (b Bcrypt) Hash(value string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(value), b.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether value matches digest. A mismatch is (false, nil); a
// digest that is not a bcrypt string at all is (false, err).
func (b Bcrypt) Verify(value, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(value))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
