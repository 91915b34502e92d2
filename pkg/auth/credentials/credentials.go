// Package credentials provides a static credential store that validates
// username/password logins using constant-time comparison. Password secrets
// may be bcrypt hashes or plaintext; plaintext secrets are hashed with
// SHA-256 at load time so they are never kept in memory verbatim.
package credentials

import (
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// User is the configuration format for a single credential entry.
type User struct {
	// Username is the login name. Required.
	Username string

	// Password is the secret: either a bcrypt hash (recognized by its
	// "$2" prefix) or a plaintext value.
	Password string

	// Subject is the identity embedded in issued tokens. Defaults to
	// the username.
	Subject string
}

// entry holds a prepared credential record.
type entry struct {
	usernameHash [32]byte
	passwordHash [32]byte // SHA-256 of plaintext, unused for bcrypt entries
	bcryptHash   []byte   // set when the configured secret is a bcrypt hash
	subject      string
}

// Store validates login credentials against a static user list.
type Store struct {
	entries []entry
}

// New creates a credential store from the given users. Plaintext secrets
// are hashed immediately and not retained.
func New(users []User) *Store {
	s := &Store{}
	for _, u := range users {
		subject := u.Subject
		if subject == "" {
			subject = u.Username
		}

		e := entry{
			usernameHash: sha256.Sum256([]byte(u.Username)),
			subject:      subject,
		}
		if strings.HasPrefix(u.Password, "$2") {
			e.bcryptHash = []byte(u.Password)
		} else {
			e.passwordHash = sha256.Sum256([]byte(u.Password))
		}
		s.entries = append(s.entries, e)
	}
	return s
}

// Authenticate resolves a subject for the given username and password.
// It returns the subject and true only on an exact match of both values;
// otherwise it returns "" and false. A non-match is not an error: the
// caller maps it to the generic rejected-login response.
//
// Every stored entry is examined on every call so that timing does not
// reveal whether the username exists.
func (s *Store) Authenticate(username, password string) (string, bool) {
	usernameHash := sha256.Sum256([]byte(username))
	passwordHash := sha256.Sum256([]byte(password))

	var (
		subject string
		found   bool
	)

	for _, e := range s.entries {
		userMatch := subtle.ConstantTimeCompare(usernameHash[:], e.usernameHash[:]) == 1

		var passMatch bool
		if e.bcryptHash != nil {
			passMatch = bcrypt.CompareHashAndPassword(e.bcryptHash, []byte(password)) == nil
		} else {
			passMatch = subtle.ConstantTimeCompare(passwordHash[:], e.passwordHash[:]) == 1
		}

		if userMatch && passMatch && !found {
			subject = e.subject
			found = true
		}
	}

	return subject, found
}
