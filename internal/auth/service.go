package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/school-platform/internal"
)

var ErrIdentityNotFound = errors.New("identity not found")

type RepositoryAPI interface {
	GetIdentityByEmail(ctx context.Context, email string) (*Identity, error)
	GetIdentityByID(ctx context.Context, userID int64) (*Identity, error)
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*TokenResponse, error)
	ResolvePrincipal(ctx context.Context, token string) (*internal.Principal, error)
}

type Service struct {
	repo       RepositoryAPI
	tokens     TokenGenerator
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Authenticate checks the credentials and issues an access token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*TokenResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	identity, err := s.repo.GetIdentityByEmail(ctx, dto.Email)
	if errors.Is(err, ErrIdentityNotFound) {
		return nil, internal.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.WarnContext(ctx, "password mismatch", "user_id", identity.UserID)
		return nil, internal.ErrInvalidCredentials
	}
	if !identity.IsActive {
		return nil, internal.ErrUserInactive
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(identity.UserID, identity.Email)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user authenticated", "user_id", identity.UserID)
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Principal:   identity.Principal(),
	}, nil
}

func (s *Service) ResolvePrincipal(ctx context.Context, token string) (*internal.Principal, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	identity, err := s.repo.GetIdentityByID(ctx, claims.UserID)
	if errors.Is(err, ErrIdentityNotFound) {
		return nil, internal.ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load identity %d: %w", claims.UserID, err)
	}
	if !identity.IsActive {
		return nil, internal.ErrUserInactive
	}
	return identity.Principal(), nil
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
