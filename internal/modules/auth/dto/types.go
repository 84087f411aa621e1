package dto

import "time"

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	TokenType string
	ExpiresAt time.Time
}

type RegisterInput struct {
	Registration string
	Name         string
	Email        string
	Phone        string
	Password     string
}

type UserOutput struct {
	ID           int64
	Registration string
	Name         string
	Email        string
	Phone        string
	State        string
}

type StatusOutput struct {
	Authenticated bool
	ExpiresAt     time.Time
}
