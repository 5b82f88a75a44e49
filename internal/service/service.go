package service

import (
	"context"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
)

const tracerName = "github.com/bcart01v/atlas-cinema-guru/internal/service"

// ListCache stores rendered pages per user. Implementations must make every
// page of a user unreachable on Invalidate.
type ListCache interface {
	Get(ctx context.Context, email, scope, key string, dest any) (bool, error)
	Set(ctx context.Context, email, scope, key string, value any) error
	Invalidate(ctx context.Context, email string) error
}

// EventPublisher announces committed membership changes.
type EventPublisher interface {
	PublishToggled(ctx context.Context, e domain.ToggledEvent) error
}
