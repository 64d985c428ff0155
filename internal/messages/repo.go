package messages

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandhaus/storefront-backend/pkg/db/models"
	"github.com/brandhaus/storefront-backend/pkg/enums"
)

// Repository persists the admin/reseller message threads.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, message *models.Message) (*models.Message, error) {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// ListThread returns the reseller's thread oldest first.
func (r *Repository) ListThread(ctx context.Context, resellerID uuid.UUID) ([]models.Message, error) {
	var thread []models.Message
	if err := r.db.WithContext(ctx).
		Where("reseller_id = ?", resellerID).
		Order("created_at ASC").
		Find(&thread).Error; err != nil {
		return nil, err
	}
	return thread, nil
}

// MarkRead stamps every unread message the other party sent. Reading your
// own messages never marks anything.
func (r *Repository) MarkRead(ctx context.Context, resellerID uuid.UUID, reader enums.MessageSender, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("reseller_id = ? AND sender <> ? AND read_at IS NULL", resellerID, reader).
		UpdateColumn("read_at", at)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountUnread counts messages awaiting the reader.
func (r *Repository) CountUnread(ctx context.Context, resellerID uuid.UUID, reader enums.MessageSender) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("reseller_id = ? AND sender <> ? AND read_at IS NULL", resellerID, reader).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
