package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/school-platform/internal"
	userDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, userID int64) (*userDatamodel.User, error)
	PurchasedCourseIDs(ctx context.Context, userID int64) ([]int64, error)
}

type ServiceAPI interface {
	Me(ctx context.Context, p *internal.Principal) (*Profile, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Me(ctx context.Context, p *internal.Principal) (*Profile, error) {
	if p == nil {
		return nil, internal.ErrAuthenticationRequired
	}

	u, err := s.repo.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	// staff cannot buy courses, so only students carry purchases
	var purchased []int64
	if !p.IsStaff() {
		purchased, err = s.repo.PurchasedCourseIDs(ctx, p.UserID)
		if err != nil {
			s.logger.Error("failed to load purchases", "user_id", p.UserID, "error", err)
			return nil, fmt.Errorf("failed to load purchases: %w", err)
		}
	}

	return NewProfile(u, p, purchased), nil
}
