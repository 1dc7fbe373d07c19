package repository

import (
	"context"

	"github.com/jafarshop/productvariant/internal/domain"
)

// AssignmentEventRepository defines save audit data access methods
type AssignmentEventRepository interface {
	Create(ctx context.Context, event *domain.AssignmentEvent) error
	ListByProductID(ctx context.Context, productID string, limit int) ([]*domain.AssignmentEvent, error)
}

// WebhookDeliveryRepository defines processed webhook delivery data access methods
type WebhookDeliveryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.WebhookDelivery, error)
	Create(ctx context.Context, delivery *domain.WebhookDelivery) error
}

// Repositories aggregates all repositories
type Repositories struct {
	AssignmentEvent AssignmentEventRepository
	WebhookDelivery WebhookDeliveryRepository
}
