package article

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/school-platform/internal"
	"github.com/frahmantamala/school-platform/internal/comment"
	"github.com/frahmantamala/school-platform/internal/core/common/pagination"
	articleDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/article"
	"github.com/frahmantamala/school-platform/internal/storage"
)

type RepositoryAPI interface {
	List(ctx context.Context, limit, offset int) ([]*articleDatamodel.Article, int64, error)
	ListByStudent(ctx context.Context, studentID int64, limit, offset int) ([]*articleDatamodel.Article, int64, error)
	GetByID(ctx context.Context, id int64) (*articleDatamodel.Article, error)
	Create(ctx context.Context, a *articleDatamodel.Article) error
	Update(ctx context.Context, a *articleDatamodel.Article) error
	Delete(ctx context.Context, id int64) error
}

type ThreadLoader interface {
	Thread(ctx context.Context, articleID int64) ([]*comment.Comment, error)
}

type ServiceAPI interface {
	List(ctx context.Context, page int) (*pagination.Page[*Article], error)
	ListMine(ctx context.Context, p *internal.Principal, page int) (*pagination.Page[*Article], error)
	Detail(ctx context.Context, id int64) (*Detail, error)
	Create(ctx context.Context, p *internal.Principal, dto CreateArticleDTO) (*Article, error)
	Update(ctx context.Context, p *internal.Principal, id int64, dto UpdateArticleDTO) (*Article, error)
	Delete(ctx context.Context, p *internal.Principal, id int64) error
}

type Service struct {
	repo     RepositoryAPI
	threads  ThreadLoader
	uploader storage.Uploader
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, threads ThreadLoader, uploader storage.Uploader, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		threads:  threads,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *Service) List(ctx context.Context, page int) (*pagination.Page[*Article], error) {
	models, total, err := s.repo.List(ctx, pagination.PerPage, pagination.Offset(page))
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return pagination.New(FromDataModelSlice(models), page, total), nil
}

func (s *Service) ListMine(ctx context.Context, p *internal.Principal, page int) (*pagination.Page[*Article], error) {
	if p == nil {
		return nil, internal.ErrAuthenticationRequired
	}
	models, total, err := s.repo.ListByStudent(ctx, p.UserID, pagination.PerPage, pagination.Offset(page))
	if err != nil {
		return nil, fmt.Errorf("failed to list articles of user %d: %w", p.UserID, err)
	}
	return pagination.New(FromDataModelSlice(models), page, total), nil
}

func (s *Service) Detail(ctx context.Context, id int64) (*Detail, error) {
	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.threads.Thread(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Article: FromDataModel(model), Comments: comments}, nil
}

func (s *Service) Create(ctx context.Context, p *internal.Principal, dto CreateArticleDTO) (*Article, error) {
	if p == nil {
		return nil, internal.ErrAuthenticationRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	a := &Article{Title: dto.Title, Content: dto.Content, StudentID: p.UserID}
	if dto.Image != nil {
		url, err := s.upload(ctx, dto.Image)
		if err != nil {
			return nil, err
		}
		a.Image = &url
	}

	model := ToDataModel(a)
	if err := s.repo.Create(ctx, model); err != nil {
		s.logger.ErrorContext(ctx, "failed to create article", "error", err, "user_id", p.UserID)
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	s.logger.InfoContext(ctx, "article created", "article_id", model.ID, "user_id", p.UserID)
	return FromDataModel(model), nil
}

// Update is scoped to the author: other users get not found, as if the article did not exist.
func (s *Service) Update(ctx context.Context, p *internal.Principal, id int64, dto UpdateArticleDTO) (*Article, error) {
	if p == nil {
		return nil, internal.ErrAuthenticationRequired
	}

	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if model.StudentID != p.UserID {
		return nil, internal.ErrArticleNotFound
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if dto.Title != "" {
		model.Title = dto.Title
	}
	if dto.Content != "" {
		model.Content = dto.Content
	}
	if dto.Image != nil {
		url, err := s.upload(ctx, dto.Image)
		if err != nil {
			return nil, err
		}
		model.Image = &url
	}

	if err := s.repo.Update(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to update article %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "article updated", "article_id", id, "user_id", p.UserID)
	return FromDataModel(model), nil
}

func (s *Service) Delete(ctx context.Context, p *internal.Principal, id int64) error {
	if p == nil {
		return internal.ErrAuthenticationRequired
	}

	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !FromDataModel(model).IsOwnedBy(p.UserID) {
		s.logger.WarnContext(ctx, "article delete denied", "article_id", id, "user_id", p.UserID, "owner_id", model.StudentID)
		return internal.ErrNotOwner
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete article %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "article deleted", "article_id", id, "user_id", p.UserID)
	return nil
}

func (s *Service) upload(ctx context.Context, u *storage.Upload) (string, error) {
	url, err := s.uploader.Upload(ctx, u)
	if err != nil {
		return "", internal.NewInternalError("failed to store image", err)
	}
	return url, nil
}
