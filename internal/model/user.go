package model

import (
	"regexp"
	"time"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 8
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// User represents a user account
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Hash      *string   `json:"-"` // Never expose password hash
	CreatedOn time.Time `json:"created_on"`
}

// HasPassword returns true if a password hash is stored
func (u *User) HasPassword() bool {
	return u.Hash != nil && *u.Hash != ""
}

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Username string  `json:"username"`
	Password *string `json:"password,omitempty"`
}

// Validate validates a CreateUserRequest
func (r *CreateUserRequest) Validate() []FieldError {
	var errors []FieldError

	switch {
	case r.Username == "":
		errors = append(errors, FieldError{Field: "username", Message: "username is required"})
	case len(r.Username) < MinUsernameLength || len(r.Username) > MaxUsernameLength:
		errors = append(errors, FieldError{Field: "username", Message: "username must be 3-50 characters"})
	case !usernamePattern.MatchString(r.Username):
		errors = append(errors, FieldError{Field: "username", Message: "username may only contain lowercase letters, digits, '-' and '_'"})
	}

	if r.Password != nil && len(*r.Password) < MinPasswordLength {
		errors = append(errors, FieldError{Field: "password", Message: "password must be at least 8 characters"})
	}

	return errors
}
