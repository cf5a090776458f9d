package ports

import (
	"context"

	"github.com/samirrijal/geoexport/internal/core/domain"
)

// ObjectStorage stores export archives and hands back a public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishExportRequested(ctx context.Context, req *domain.ExportRequest) error
	PublishExportCompleted(ctx context.Context, event *domain.ExportCompleted) error
	PublishExportFailed(ctx context.Context, event *domain.ExportFailed) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeExportRequests(ctx context.Context, handler func(ctx context.Context, req *domain.ExportRequest) error) error
	SubscribeExportEvents(ctx context.Context, handler func(ctx context.Context, subject string, data []byte) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
