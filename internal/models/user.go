package models

import (
	"errors"
	"time"
)

var (
	ErrEmailAlreadyUsed = errors.New("email already used")
	ErrInvalidFormat    = errors.New("invalid email format")
	ErrWeakPasswd       = errors.New("weak password")
)

type User struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Role      Role      `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}
