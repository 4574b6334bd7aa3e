package security

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost matches the work factor the rest of the deployment was
// provisioned for; raise it via config, not here.
const DefaultBcryptCost = 10

type Hasher struct {
	cost int
}

func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost {
		cost = DefaultBcryptCost
	}
	return Hasher{cost: cost}
}

func (h Hasher) Hash(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), h.cost)
	return string(b), err
}

// Verify fails closed: a malformed stored hash is a non-match, never an
// error the caller has to special-case.
func (h Hasher) Verify(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
