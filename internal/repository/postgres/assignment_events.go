package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/domain"
)

const defaultEventListLimit = 50

type assignmentEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAssignmentEventRepository creates a new assignment event repository
func NewAssignmentEventRepository(db *sql.DB, logger *zap.Logger) *assignmentEventRepository {
	return &assignmentEventRepository{
		db:     db,
		logger: logger,
	}
}

func (r *assignmentEventRepository) Create(ctx context.Context, event *domain.AssignmentEvent) error {
	query := `
		INSERT INTO assignment_events (id, product_id, collection_handle, outcome, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var detailJSON []byte
	var err error
	if event.Detail != nil {
		detailJSON, err = json.Marshal(event.Detail)
		if err != nil {
			return err
		}
	}

	_, err = r.db.ExecContext(ctx, query,
		event.ID,
		event.ProductID,
		event.CollectionHandle,
		event.Outcome,
		detailJSON,
		event.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create assignment event", zap.Error(err))
		return err
	}

	return nil
}

// ListByProductID returns the newest events first
func (r *assignmentEventRepository) ListByProductID(ctx context.Context, productID string, limit int) ([]*domain.AssignmentEvent, error) {
	if limit <= 0 {
		limit = defaultEventListLimit
	}
	query := `
		SELECT id, product_id, collection_handle, outcome, detail, created_at
		FROM assignment_events
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, productID, limit)
	if err != nil {
		r.logger.Error("Failed to list assignment events", zap.String("product_id", productID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	events := []*domain.AssignmentEvent{}
	for rows.Next() {
		var event domain.AssignmentEvent
		var detailJSON []byte

		if err := rows.Scan(
			&event.ID,
			&event.ProductID,
			&event.CollectionHandle,
			&event.Outcome,
			&detailJSON,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}

		if len(detailJSON) > 0 {
			if err := json.Unmarshal(detailJSON, &event.Detail); err != nil {
				return nil, err
			}
		}

		events = append(events, &event)
	}

	return events, rows.Err()
}
