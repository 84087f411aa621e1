package domain

import (
	"fmt"
	"strings"
	"time"
)

type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Valid reports whether the token is present and not yet expired at now.
func (t Token) Valid(now time.Time) bool {
	return strings.TrimSpace(t.AccessToken) != "" && now.Before(t.ExpiresAt)
}

type User struct {
	ID           int64
	Registration string
	Name         string
	Email        string
	Phone        string
	State        string
}

type Credentials struct {
	Email    string
	Password string
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

type Registration struct {
	Registration string
	Name         string
	Email        string
	Phone        string
	Password     string
}

func (r Registration) Validate() error {
	if strings.TrimSpace(r.Registration) == "" {
		return fmt.Errorf("registration number is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("email %q is not valid", r.Email)
	}
	if len(r.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return nil
}

// Grant is what the backend returns on login.
type Grant struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
}
