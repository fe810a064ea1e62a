package authentication

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type UserRepository interface {
	Insert(ctx context.Context, user *User) (err error)
	Find(ctx context.Context, userID int64) (user *User, err error)
	FindByEmail(ctx context.Context, email string) (user *User, err error)
	ListEmails(ctx context.Context) (emails []string, err error)
}

type UserNotFoundError struct {
	ID int64
}

func (err UserNotFoundError) Error() string {
	return fmt.Sprintf("user with id %d not found", err.ID)
}

type UserByEmailNotFoundError struct {
	Email string
}

func (err UserByEmailNotFoundError) Error() string {
	return fmt.Sprintf("user with email %q not found", err.Email)
}

type UserAlreadyExistsError struct {
	Email string
}

func (err UserAlreadyExistsError) Error() string {
	return fmt.Sprintf("user with email %q already exists", err.Email)
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("token is not valid")
	ErrTokenExpired       = errors.New("token is expired")
	ErrPasswordTooLong    = fmt.Errorf("password must be at most %d bytes", MaxPasswordLength)
)
