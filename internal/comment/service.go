package comment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/school-platform/internal"
	"github.com/frahmantamala/school-platform/internal/core/common/pagination"
	commentDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/comment"
)

type RepositoryAPI interface {
	ArticleExists(ctx context.Context, articleID int64) (bool, error)
	Create(ctx context.Context, c *commentDatamodel.Comment) error
	GetByID(ctx context.Context, id int64) (*commentDatamodel.Comment, error)
	ListForReceivers(ctx context.Context, kind string, receiverIDs []int64) ([]*commentDatamodel.Comment, error)
	List(ctx context.Context, limit, offset int) ([]*commentDatamodel.Comment, int64, error)
	Delete(ctx context.Context, id int64) error
}

type ServiceAPI interface {
	AddToArticle(ctx context.Context, p *internal.Principal, articleID int64, dto CreateCommentDTO) (*Comment, error)
	Reply(ctx context.Context, p *internal.Principal, articleID, parentID int64, dto CreateCommentDTO) (*Comment, error)
	Thread(ctx context.Context, articleID int64) ([]*Comment, error)
	List(ctx context.Context, p *internal.Principal, page int) (*pagination.Page[*Comment], error)
	Delete(ctx context.Context, p *internal.Principal, id int64) error
}

var ErrReplyToReply = internal.NewValidationError("replies to replies are not allowed", internal.ErrCodeNestedReply)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) AddToArticle(ctx context.Context, p *internal.Principal, articleID int64, dto CreateCommentDTO) (*Comment, error) {
	if p == nil {
		return nil, internal.ErrAuthenticationRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireArticle(ctx, articleID); err != nil {
		return nil, err
	}

	return s.create(ctx, NewComment(p.UserID, dto.Content, ArticleReceiver(articleID)))
}

// Reply attaches a comment to a top-level comment of the same article. Threads are one level deep.
func (s *Service) Reply(ctx context.Context, p *internal.Principal, articleID, parentID int64, dto CreateCommentDTO) (*Comment, error) {
	if p == nil {
		return nil, internal.ErrAuthenticationRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireArticle(ctx, articleID); err != nil {
		return nil, err
	}

	parentModel, err := s.repo.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	parent := FromDataModel(parentModel)

	if parent.Receiver.Kind == ReceiverComment {
		s.logger.WarnContext(ctx, "nested reply rejected", "parent_id", parentID, "user_id", p.UserID)
		return nil, ErrReplyToReply
	}
	if !parent.Receiver.IsArticle(articleID) {
		return nil, internal.NewValidationFieldError("comment_id", "comment does not belong to this article", internal.ErrCodeValidationFailed)
	}

	return s.create(ctx, NewComment(p.UserID, dto.Content, CommentReceiver(parentID)))
}

// Thread returns the article's top-level comments newest first, each with its replies.
func (s *Service) Thread(ctx context.Context, articleID int64) ([]*Comment, error) {
	topModels, err := s.repo.ListForReceivers(ctx, string(ReceiverArticle), []int64{articleID})
	if err != nil {
		return nil, fmt.Errorf("failed to load comments of article %d: %w", articleID, err)
	}
	top := FromDataModelSlice(topModels)
	if len(top) == 0 {
		return top, nil
	}

	ids := make([]int64, len(top))
	byID := make(map[int64]*Comment, len(top))
	for i, c := range top {
		ids[i] = c.ID
		byID[c.ID] = c
	}

	replyModels, err := s.repo.ListForReceivers(ctx, string(ReceiverComment), ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load replies of article %d: %w", articleID, err)
	}
	for _, reply := range FromDataModelSlice(replyModels) {
		if parent, ok := byID[reply.Receiver.ID]; ok {
			parent.Replies = append(parent.Replies, reply)
		}
	}
	return top, nil
}

func (s *Service) List(ctx context.Context, p *internal.Principal, page int) (*pagination.Page[*Comment], error) {
	if !p.IsStaff() {
		return nil, internal.ErrStaffOnly
	}

	models, total, err := s.repo.List(ctx, pagination.PerPage, pagination.Offset(page))
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return pagination.New(FromDataModelSlice(models), page, total), nil
}

func (s *Service) Delete(ctx context.Context, p *internal.Principal, id int64) error {
	if !p.IsStaff() {
		return internal.ErrStaffOnly
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "comment deleted", "comment_id", id, "user_id", p.UserID)
	return nil
}

func (s *Service) requireArticle(ctx context.Context, articleID int64) error {
	exists, err := s.repo.ArticleExists(ctx, articleID)
	if err != nil {
		return fmt.Errorf("failed to look up article %d: %w", articleID, err)
	}
	if !exists {
		return internal.ErrArticleNotFound
	}
	return nil
}

func (s *Service) create(ctx context.Context, c *Comment) (*Comment, error) {
	model := ToDataModel(c)
	if err := s.repo.Create(ctx, model); err != nil {
		s.logger.ErrorContext(ctx, "failed to create comment", "error", err, "receiver", c.Receiver)
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	c.ID = model.ID
	c.CreatedAt = model.CreatedAt

	s.logger.InfoContext(ctx, "comment created", "comment_id", c.ID, "receiver_kind", c.Receiver.Kind, "receiver_id", c.Receiver.ID)
	return c, nil
}
