package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
	pkgkafka "github.com/bcart01v/atlas-cinema-guru/pkg/kafka"
	"github.com/bcart01v/atlas-cinema-guru/pkg/logger"
)

const (
	// EventLibraryToggled is the event type for favorite and watch-later changes.
	EventLibraryToggled = "library.toggled"

	SourceCinemaGuru = "cinema-guru"
)

// Producer publishes library events to Kafka.
type Producer struct {
	kafka  pkgkafka.Publisher
	logger *slog.Logger
}

func NewProducer(kafka pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishToggled publishes a library.toggled event keyed by the user's
// email, so one user's toggles stay ordered within a partition.
func (p *Producer) PublishToggled(ctx context.Context, e domain.ToggledEvent) error {
	event, err := pkgkafka.NewEvent(EventLibraryToggled, e.UserEmail, SourceCinemaGuru, e)
	if err != nil {
		return fmt.Errorf("create %s event: %w", EventLibraryToggled, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	event.WithMetadata("kind", string(e.Kind))

	if err := p.kafka.Publish(ctx, pkgkafka.TopicLibraryToggled, event); err != nil {
		return fmt.Errorf("publish %s event: %w", EventLibraryToggled, err)
	}

	p.logger.DebugContext(ctx, "published library.toggled event",
		slog.String("movie_id", e.MovieID),
		slog.String("kind", string(e.Kind)),
		slog.Bool("active", e.Active),
	)
	return nil
}

// Discard drops every event. It stands in for Producer when Kafka is
// disabled.
type Discard struct{}

func (Discard) PublishToggled(context.Context, domain.ToggledEvent) error { return nil }
