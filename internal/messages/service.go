package messages

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandhaus/storefront-backend/pkg/db/models"
	"github.com/brandhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/brandhaus/storefront-backend/pkg/errors"
	"github.com/brandhaus/storefront-backend/pkg/logger"
)

const maxBodyLen = 4000

// Service exposes the admin/reseller messaging thread.
type Service interface {
	Send(ctx context.Context, resellerID uuid.UUID, sender enums.MessageSender, body string) (*models.Message, error)
	Thread(ctx context.Context, resellerID uuid.UUID, reader enums.MessageSender) ([]models.Message, error)
	UnreadCount(ctx context.Context, resellerID uuid.UUID, reader enums.MessageSender) (int64, error)
}

type resellerChecker interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reseller, error)
}

type service struct {
	repo      *Repository
	resellers resellerChecker
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the messages service.
func NewService(repo *Repository, resellers resellerChecker, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("Messages repo is required")
	}
	if resellers == nil {
		return nil, errors.New("reseller lookup is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &service{repo: repo, resellers: resellers, logg: logg, now: time.Now}, nil
}

func (s *service) Send(ctx context.Context, resellerID uuid.UUID, sender enums.MessageSender, body string) (*models.Message, error) {
	if !sender.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown message sender")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body is required")
	}
	if len(body) > maxBodyLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body is too long")
	}
	if err := s.checkReseller(ctx, resellerID); err != nil {
		return nil, err
	}

	message := &models.Message{
		ID:         uuid.New(),
		ResellerID: resellerID,
		Sender:     sender,
		Body:       body,
	}
	created, err := s.repo.Create(ctx, message)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message")
	}
	return created, nil
}

// Thread returns the full thread oldest first and marks the other party's
// messages as read by this reader.
func (s *service) Thread(ctx context.Context, resellerID uuid.UUID, reader enums.MessageSender) ([]models.Message, error) {
	if !reader.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown message sender")
	}
	if err := s.checkReseller(ctx, resellerID); err != nil {
		return nil, err
	}

	if _, err := s.repo.MarkRead(ctx, resellerID, reader, s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark thread read")
	}
	thread, err := s.repo.ListThread(ctx, resellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list thread")
	}
	return thread, nil
}

func (s *service) UnreadCount(ctx context.Context, resellerID uuid.UUID, reader enums.MessageSender) (int64, error) {
	if !reader.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "unknown message sender")
	}
	count, err := s.repo.CountUnread(ctx, resellerID, reader)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread")
	}
	return count, nil
}

func (s *service) checkReseller(ctx context.Context, resellerID uuid.UUID) error {
	if _, err := s.resellers.FindByID(ctx, resellerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "reseller not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reseller")
	}
	return nil
}
