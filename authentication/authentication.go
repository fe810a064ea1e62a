package authentication

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	userRepo     UserRepository
	tokenIssuer  *TokenIssuer
	emailsFilter *EmailFilter
}

func NewService(userRepo UserRepository, tokenIssuer *TokenIssuer) *Service {
	return &Service{
		userRepo:    userRepo,
		tokenIssuer: tokenIssuer,
	}
}

// LoadEmailFilter fills the bloom filter with every registered email. Sign up
// skips the database lookup for emails the filter has never seen.
func (svc *Service) LoadEmailFilter(ctx context.Context, minCapacity uint, falsePositiveRate float64) error {
	emails, err := svc.userRepo.ListEmails(ctx)
	if err != nil {
		return fmt.Errorf("failed to list emails for bloom filter: %w", err)
	}

	filter := NewEmailFilter(max(uint(len(emails)), minCapacity), falsePositiveRate)
	for _, email := range emails {
		filter.Add(normalizeEmail(email))
	}

	svc.emailsFilter = filter

	return nil
}

// MaxPasswordLength is the longest password bcrypt accepts, in bytes.
const MaxPasswordLength = 72

func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	bcryptHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(bcryptHash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type SignUpRequest struct {
	Name     string
	Email    string
	Password string
}

// SignUp registers a user and returns a token for it.
func (svc *Service) SignUp(ctx context.Context, req SignUpRequest) (string, error) {
	email := normalizeEmail(req.Email)

	if svc.emailsFilter == nil || svc.emailsFilter.MayContain(email) {
		_, err := svc.userRepo.FindByEmail(ctx, email)
		if err == nil {
			return "", UserAlreadyExistsError{Email: email}
		}

		var notFoundErr UserByEmailNotFoundError
		if !errors.As(err, &notFoundErr) {
			return "", fmt.Errorf("failed to find user by email: %w", err)
		}
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return "", err
	}

	user := &User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	err = svc.userRepo.Insert(ctx, user)
	if err != nil {
		var alreadyExistsErr UserAlreadyExistsError
		if errors.As(err, &alreadyExistsErr) {
			svc.rememberEmail(email)

			return "", alreadyExistsErr
		}

		return "", fmt.Errorf("failed to insert user: %w", err)
	}

	svc.rememberEmail(email)

	slog.InfoContext(ctx, "user signed up", "userId", user.ID)

	token, err := svc.tokenIssuer.Issue(user)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return token, nil
}

func (svc *Service) rememberEmail(email string) {
	if svc.emailsFilter != nil {
		svc.emailsFilter.Add(email)
	}
}

// SignIn checks the credentials and returns a fresh token.
func (svc *Service) SignIn(ctx context.Context, email, password string) (string, error) {
	user, err := svc.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		var notFoundErr UserByEmailNotFoundError
		if errors.As(err, &notFoundErr) {
			return "", ErrInvalidCredentials
		}

		return "", fmt.Errorf("failed to find user by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", ErrInvalidCredentials
		}

		return "", fmt.Errorf("failed to compare password hash: %w", err)
	}

	token, err := svc.tokenIssuer.Issue(user)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return token, nil
}

// Authenticate verifies a bearer token and returns the user id it carries.
func (svc *Service) Authenticate(_ context.Context, token string) (int64, error) {
	claims, err := svc.tokenIssuer.Verify(token)
	if err != nil {
		return 0, err
	}

	return claims.UserID, nil
}

func (svc *Service) GetUser(ctx context.Context, userID int64) (*User, error) {
	user, err := svc.userRepo.Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}

	user.PasswordHash = ""

	return user, nil
}
