package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/domain"
	apperrors "github.com/jafarshop/productvariant/pkg/errors"
)

// uniqueViolation is the Postgres SQLSTATE for a duplicate key
const uniqueViolation = "23505"

type webhookDeliveryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWebhookDeliveryRepository creates a new webhook delivery repository
func NewWebhookDeliveryRepository(db *sql.DB, logger *zap.Logger) *webhookDeliveryRepository {
	return &webhookDeliveryRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID returns nil, nil when the delivery has not been processed
func (r *webhookDeliveryRepository) GetByID(ctx context.Context, id string) (*domain.WebhookDelivery, error) {
	query := `
		SELECT id, topic, product_id, result, created_at
		FROM webhook_deliveries
		WHERE id = $1
	`

	var delivery domain.WebhookDelivery

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&delivery.ID,
		&delivery.Topic,
		&delivery.ProductID,
		&delivery.Result,
		&delivery.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get webhook delivery", zap.Error(err))
		return nil, err
	}

	return &delivery, nil
}

// Create returns *errors.ErrConflict when another request already recorded the delivery
func (r *webhookDeliveryRepository) Create(ctx context.Context, delivery *domain.WebhookDelivery) error {
	query := `
		INSERT INTO webhook_deliveries (id, topic, product_id, result, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if delivery.CreatedAt.IsZero() {
		delivery.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		delivery.ID,
		delivery.Topic,
		delivery.ProductID,
		delivery.Result,
		delivery.CreatedAt,
	)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return &apperrors.ErrConflict{Message: "webhook delivery already processed"}
	}
	if err != nil {
		r.logger.Error("Failed to create webhook delivery", zap.Error(err))
		return err
	}

	return nil
}
