package password

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinCost and MaxCost bound the configurable bcrypt work factor.
	MinCost = 10
	MaxCost = 15
	// DefaultCost is used when no cost is configured.
	DefaultCost = 12

	// MinLength is the minimum accepted password length.
	MinLength = 8
)

// Hasher wraps bcrypt with a tunable work factor.
type Hasher struct {
	cost int
}

// NewHasher creates a hasher with the given cost, clamped to the safe range.
// A zero cost selects DefaultCost.
func NewHasher(cost int) *Hasher {
	switch {
	case cost == 0:
		cost = DefaultCost
	case cost < MinCost:
		cost = MinCost
	case cost > MaxCost:
		cost = MaxCost
	}
	return &Hasher{cost: cost}
}

// Hash derives a bcrypt hash from the plaintext password
func (h *Hasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare reports whether plain matches the stored hash. Any mismatch or
// malformed hash yields false, never an error.
func (h *Hasher) Compare(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// ValidateStrength checks a candidate password against the strength policy
// and returns every violated rule so callers can report them all at once.
func ValidateStrength(plain string) []string {
	var violations []string

	if len(plain) < MinLength {
		violations = append(violations, "password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		violations = append(violations, "password must contain at least one uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "password must contain at least one lowercase letter")
	}
	if !hasDigit {
		violations = append(violations, "password must contain at least one digit")
	}

	return violations
}
