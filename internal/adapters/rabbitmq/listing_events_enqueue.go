package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/MoguchiyDuh/televito/internal/contextkeys"
	"github.com/MoguchiyDuh/televito/internal/core/domain"
	"github.com/MoguchiyDuh/televito/internal/core/port"
	"github.com/MoguchiyDuh/televito/pkg/rabbitmq/rabbitmq_producer"
)

// ListingEventDTO — событие сверки для внешних потребителей.
type ListingEventDTO struct {
	Outcome       string           `json:"outcome"`
	Listing       ListingDTO       `json:"listing"`
	ChangedFields []FieldChangeDTO `json:"changed_fields,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

type ListingDTO struct {
	ID               int64    `json:"id"`
	GoogleMapsURL    *string  `json:"google_maps_url"`
	Location         string   `json:"location"`
	Status           *string  `json:"status"`
	Price            float64  `json:"price"`
	Duration         *int     `json:"duration"`
	IsNew            bool     `json:"is_new"`
	Rooms            *float64 `json:"rooms"`
	RoomDescription  *string  `json:"room_description"`
	Area             *float64 `json:"area"`
	Floor            *int     `json:"floor"`
	FloorsInBuilding *int     `json:"floors_in_building"`
	PetsAllowed      bool     `json:"pets_allowed"`
	Parking          *string  `json:"parking"`
	Images           []string `json:"images"`
	PublicationTime  string   `json:"publication_datetime"`
}

type FieldChangeDTO struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// RabbitMQListingEventsAdapter публикует исходы сверки в обменник.
type RabbitMQListingEventsAdapter struct {
	producer   *rabbitmq_producer.Publisher
	routingKey string
}

func NewRabbitMQListingEventsAdapter(producer *rabbitmq_producer.Publisher, routingKey string) (*RabbitMQListingEventsAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("routingKey cannot be empty")
	}
	return &RabbitMQListingEventsAdapter{
		producer:   producer,
		routingKey: routingKey,
	}, nil
}

// PublishOutcome отправляет событие сверки одной записи.
func (a *RabbitMQListingEventsAdapter) PublishOutcome(ctx context.Context, record domain.ListingRecord, outcome domain.ReconcileOutcome, changes []domain.FieldChange) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "RabbitMQListingEventsAdapter",
		"routing_key": a.routingKey,
		"listing_id":  record.ID,
	})

	eventDTO := ListingEventDTO{
		Outcome:    outcome.String(),
		Listing:    toListingDTO(record),
		OccurredAt: time.Now().UTC(),
	}
	for _, c := range changes {
		eventDTO.ChangedFields = append(eventDTO.ChangedFields, FieldChangeDTO{
			Field: c.Field,
			Old:   c.Old,
			New:   c.New,
		})
	}

	eventJSON, err := json.Marshal(eventDTO)
	if err != nil {
		adapterLogger.Error("Failed to marshal listing event to JSON", err, nil)
		return fmt.Errorf("failed to marshal listing event for %d: %w", record.ID, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         eventJSON,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			"event-type":    "ListingReconciledEvent",
			"event-version": "1.0.0",
		},
	}

	traceID := contextkeys.TraceIDFromContext(ctx)
	if traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish listing event", err, nil)
		return err
	}

	adapterLogger.Debug("Listing event published", port.Fields{"outcome": eventDTO.Outcome})
	return nil
}

func toListingDTO(rec domain.ListingRecord) ListingDTO {
	dto := ListingDTO{
		ID:               rec.ID,
		GoogleMapsURL:    rec.GoogleMapsURL,
		Location:         rec.Location,
		Price:            rec.Price,
		Duration:         rec.Duration,
		IsNew:            rec.IsNew,
		Rooms:            rec.Rooms,
		RoomDescription:  rec.RoomDescription,
		Area:             rec.Area,
		Floor:            rec.Floor,
		FloorsInBuilding: rec.FloorsInBuilding,
		PetsAllowed:      rec.PetsAllowed,
		Parking:          rec.Parking,
		Images:           rec.Images,
		PublicationTime:  rec.PublicationTime.Format(time.RFC3339),
	}
	if rec.Status != nil {
		status := rec.Status.Format("2006-01-02")
		dto.Status = &status
	}
	return dto
}
