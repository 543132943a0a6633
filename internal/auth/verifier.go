package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Verifier decides whether a username/password pair is acceptable.
// Implementations must not reveal which of the two fields was wrong.
type Verifier interface {
	Verify(username, password string) bool
}

// VerifierFunc adapts a plain function to Verifier.
type VerifierFunc func(username, password string) bool

func (f VerifierFunc) Verify(username, password string) bool { return f(username, password) }

// StaticVerifier accepts exactly one configured credential pair.
// If PasswordHash is set it is a bcrypt hash and Password is ignored.
type StaticVerifier struct {
	Username     string
	Password     string
	PasswordHash string
}

func (v StaticVerifier) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.Username)) == 1

	var passOK bool
	if v.PasswordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(v.PasswordHash), []byte(password)) == nil
	} else {
		passOK = v.Password != "" &&
			subtle.ConstantTimeCompare([]byte(password), []byte(v.Password)) == 1
	}

	return userOK && passOK
}
