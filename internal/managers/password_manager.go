package managers

import (
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used for new password digests.
const DefaultBcryptCost = 12

// PasswordMgr hashes and verifies account passwords.
type PasswordMgr interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type PasswordManager struct {
	cost int
}

// NewPasswordManager falls back to DefaultBcryptCost when cost is outside bcrypt's range.
func NewPasswordManager(cost int) PasswordMgr {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordManager{cost: cost}
}

func (pm *PasswordManager) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), pm.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. A malformed hash never matches.
func (pm *PasswordManager) Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true
	}
	if err != bcrypt.ErrMismatchedHashAndPassword {
		log.Debug("Password hash could not be compared: ", err)
	}
	return false
}
