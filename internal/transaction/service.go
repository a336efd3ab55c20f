package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/school-platform/internal"
	courseDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/course"
	transactionDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/transaction"
	"github.com/frahmantamala/school-platform/internal/core/events"
)

const (
	SourceWebhook = "webhook"
	SourceClient  = "client"
)

// ErrAlreadyPurchased tells the handler to send the student to the course instead of paying again.
var ErrAlreadyPurchased = errors.New("course already purchased")

type RepositoryAPI interface {
	GetOrCreate(ctx context.Context, studentID, courseID int64, amount decimal.Decimal) (*transactionDatamodel.Transaction, error)
	GetByID(ctx context.Context, id int64) (*transactionDatamodel.Transaction, error)
	HasPurchased(ctx context.Context, studentID, courseID int64) (bool, error)
	MarkCompleted(ctx context.Context, id int64) (bool, *transactionDatamodel.Transaction, error)
}

type CourseFinder interface {
	GetCourse(ctx context.Context, id int64) (*courseDatamodel.Course, error)
}

type ExportSource interface {
	ExportRows(ctx context.Context) ([]ExportRow, error)
}

type ServiceAPI interface {
	CheckoutPage(ctx context.Context, p *internal.Principal, courseID int64) (*CheckoutPage, error)
	StartCheckout(ctx context.Context, p *internal.Principal, courseID int64) (*IntentResponse, error)
	Complete(ctx context.Context, p *internal.Principal, dto CompleteDTO) (*Transaction, error)
	MarkPaid(ctx context.Context, transactionID int64, source string) (*Transaction, error)
	PublishableKey() string
	Export(ctx context.Context, p *internal.Principal) ([]ExportRow, error)
}

type Service struct {
	repo      RepositoryAPI
	courses   CourseFinder
	exports   ExportSource
	processor Processor
	publisher events.Publisher
	payment   internal.PaymentConfig
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, courses CourseFinder, exports ExportSource, processor Processor, publisher events.Publisher, payment internal.PaymentConfig, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		courses:   courses,
		exports:   exports,
		processor: processor,
		publisher: publisher,
		payment:   payment,
		logger:    logger,
	}
}

// HasPurchased lets the course catalogue gate lessons on a COMPLETED transaction.
func (s *Service) HasPurchased(ctx context.Context, studentID, courseID int64) (bool, error) {
	return s.repo.HasPurchased(ctx, studentID, courseID)
}

func (s *Service) PublishableKey() string {
	return s.payment.PublishableKey
}

// ----------------- CHECKOUT -----------------

func (s *Service) CheckoutPage(ctx context.Context, p *internal.Principal, courseID int64) (*CheckoutPage, error) {
	if err := requireBuyer(p); err != nil {
		return nil, err
	}

	c, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	purchased, err := s.repo.HasPurchased(ctx, p.UserID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase: %w", err)
	}
	if purchased {
		return nil, ErrAlreadyPurchased
	}

	return &CheckoutPage{
		Course: CourseSummary{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			Price:       c.Price,
			Amount:      AmountFor(c.Price),
			Image:       c.Image,
		},
		PublishableKey: s.payment.PublishableKey,
	}, nil
}

// StartCheckout reuses the student's transaction for the course and opens a payment intent for it.
// Failures other than role and purchase state collapse into ErrCheckoutFailed.
func (s *Service) StartCheckout(ctx context.Context, p *internal.Principal, courseID int64) (*IntentResponse, error) {
	if err := requireBuyer(p); err != nil {
		return nil, err
	}

	c, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		s.logger.Warn("checkout course lookup failed", "error", err, "course_id", courseID, "user_id", p.UserID)
		return nil, internal.ErrCheckoutFailed.WithCause(err)
	}

	amount := AmountFor(c.Price)
	m, err := s.repo.GetOrCreate(ctx, p.UserID, c.ID, amount)
	if err != nil {
		s.logger.Error("failed to get or create transaction", "error", err, "course_id", c.ID, "user_id", p.UserID)
		return nil, internal.ErrCheckoutFailed.WithCause(err)
	}
	if m.Status == transactionDatamodel.StatusCompleted {
		return nil, ErrAlreadyPurchased
	}

	intent, err := s.processor.CreatePaymentIntent(ctx, IntentRequest{
		TransactionID: m.ID,
		AmountMinor:   MinorUnits(m.Amount),
		Currency:      s.payment.Currency,
		Description:   c.Title,
	})
	if err != nil {
		return nil, internal.ErrCheckoutFailed.WithCause(err)
	}

	s.logger.Info("checkout started",
		"transaction_id", m.ID,
		"course_id", c.ID,
		"user_id", p.UserID,
		"amount", m.Amount.String())

	return &IntentResponse{ClientSecret: intent.ClientSecret, TransactionID: m.ID}, nil
}

func (s *Service) Complete(ctx context.Context, p *internal.Principal, dto CompleteDTO) (*Transaction, error) {
	if p == nil {
		return nil, internal.ErrAuthenticationRequired
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	m, err := s.repo.GetByID(ctx, dto.TransactionID)
	if err != nil {
		return nil, err
	}
	if !FromDataModel(m).BelongsTo(p.UserID) {
		return nil, internal.ErrNotOwner
	}

	return s.MarkPaid(ctx, m.ID, SourceClient)
}

// MarkPaid moves a transaction to COMPLETED from any status. The completion event fires only
// for the call that actually changed the status.
func (s *Service) MarkPaid(ctx context.Context, transactionID int64, source string) (*Transaction, error) {
	changed, m, err := s.repo.MarkCompleted(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if !changed {
		s.logger.Info("transaction already completed", "transaction_id", m.ID, "source", source)
		return FromDataModel(m), nil
	}

	s.logger.Info("transaction completed",
		"transaction_id", m.ID,
		"student_id", m.StudentID,
		"course_id", m.CourseID,
		"source", source)

	if s.publisher != nil {
		s.publisher.Publish(ctx, events.NewTransactionCompletedEvent(m.ID, m.StudentID, m.CourseID, m.Amount.StringFixed(2), source))
	}
	return FromDataModel(m), nil
}

// ----------------- REPORTING -----------------

func (s *Service) Export(ctx context.Context, p *internal.Principal) ([]ExportRow, error) {
	if !p.IsSupervisor() {
		return nil, internal.ErrSupervisorOnly
	}
	rows, err := s.exports.ExportRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for export: %w", err)
	}
	return rows, nil
}

func requireBuyer(p *internal.Principal) error {
	if p == nil {
		return internal.ErrAuthenticationRequired
	}
	if p.IsStaff() {
		return internal.ErrStudentOnly
	}
	return nil
}
