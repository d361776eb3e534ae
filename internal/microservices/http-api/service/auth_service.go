package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"reviewhub/internal/mail"
	"reviewhub/internal/microservices/http-api/apperr"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/microservices/http-api/validators"
)

const codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type AuthService interface {
	// Signup registers (username, email) or finds that exact pair again, and
	// mails a fresh confirmation code either way.
	Signup(ctx context.Context, username, email string) (*models.User, error)
	// GetToken trades a confirmation code for an access token. The code is
	// spent whether or not it matched.
	GetToken(ctx context.Context, username, code string) (string, error)
}

type TokenIssuer interface {
	Issue(userID, username string) (string, error)
}

// CodeGenerator produces confirmation codes.
type CodeGenerator func() (string, error)

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	mailer   mail.Dispatcher
	codes    CodeGenerator
	logger   *zap.Logger
}

type AuthOption func(*authService)

func WithCodeGenerator(gen CodeGenerator) AuthOption {
	return func(s *authService) {
		s.codes = gen
	}
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokens TokenIssuer,
	mailer mail.Dispatcher,
	logger *zap.Logger,
	opts ...AuthOption,
) AuthService {
	s := &authService{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
		codes:    GenerateConfirmationCode,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateConfirmationCode draws models.ConfirmationCodeLength characters
// from [a-zA-Z0-9] using crypto/rand.
func GenerateConfirmationCode() (string, error) {
	code := make([]byte, models.ConfirmationCodeLength)
	limit := big.NewInt(int64(len(codeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate confirmation code: %w", err)
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}

func (s *authService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	// validate before touching the database
	if _, err := validators.ValidateUsername(username); err != nil {
		return nil, err
	}
	if email == "" {
		return nil, apperr.Validation("email is required")
	}

	user, err := s.userRepo.GetOrCreate(ctx, username, email)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// one of the two is held by a different account
			return nil, apperr.Conflict("email or username already taken")
		}
		return nil, fmt.Errorf("signup: %w", err)
	}

	code, err := s.codes()
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetConfirmationCode(ctx, user.ID, code); err != nil {
		return nil, fmt.Errorf("store confirmation code: %w", err)
	}
	user.ConfirmationCode = code

	if err := s.mailer.SendConfirmationCode(ctx, user.Email, user.Username, code); err != nil {
		// mail is fire-and-forget, the user can sign up again for a new code
		s.logger.Warn("confirmation code not queued",
			zap.String("username", user.Username),
			zap.Error(err),
		)
	}
	return user, nil
}

func (s *authService) GetToken(ctx context.Context, username, code string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.NotFound("user %q not found", username)
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	ok, err := s.userRepo.ConsumeConfirmationCode(ctx, username, code)
	if err != nil {
		return "", err
	}
	if !ok {
		s.logger.Info("confirmation code rejected", zap.String("username", username))
		return "", apperr.InvalidCredentials("invalid confirmation code, request a new one via signup")
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", err
	}
	return token, nil
}
