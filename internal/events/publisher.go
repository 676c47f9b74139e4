// Package events emits screenshot lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/screenshot/internal/domain"
)

// ScreenshotCreated is the payload emitted after an upload succeeds.
type ScreenshotCreated struct {
	ScreenshotID   string    `json:"screenshot_id"`
	OrganizationID string    `json:"organization_id"`
	MemberID       string    `json:"member_id"`
	TimeEntryID    string    `json:"time_entry_id"`
	CapturedAt     time.Time `json:"captured_at"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ScreenshotDeleted is the payload emitted after a record deletion.
type ScreenshotDeleted struct {
	ScreenshotID   string    `json:"screenshot_id"`
	OrganizationID string    `json:"organization_id"`
	MemberID       string    `json:"member_id"`
	TimeEntryID    string    `json:"time_entry_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher writes lifecycle events to a single topic. Emission is
// fire-and-forget from the caller's perspective: the service logs failures
// and never blocks a request outcome on delivery.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			Async:        false,
		},
	}
}

// ScreenshotCreated emits a screenshot.created event.
func (p *Publisher) ScreenshotCreated(ctx context.Context, sc domain.Screenshot) error {
	return p.emit(ctx, "screenshot.created", sc, ScreenshotCreated{
		ScreenshotID:   sc.ID,
		OrganizationID: sc.OrganizationID,
		MemberID:       sc.MemberID,
		TimeEntryID:    sc.TimeEntryID,
		CapturedAt:     sc.CapturedAt,
		OccurredAt:     time.Now().UTC(),
	})
}

// ScreenshotDeleted emits a screenshot.deleted event.
func (p *Publisher) ScreenshotDeleted(ctx context.Context, sc domain.Screenshot) error {
	return p.emit(ctx, "screenshot.deleted", sc, ScreenshotDeleted{
		ScreenshotID:   sc.ID,
		OrganizationID: sc.OrganizationID,
		MemberID:       sc.MemberID,
		TimeEntryID:    sc.TimeEntryID,
		OccurredAt:     time.Now().UTC(),
	})
}

func (p *Publisher) emit(ctx context.Context, eventType string, sc domain.Screenshot, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%s:%s", sc.OrganizationID, sc.MemberID)),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "organization_id", Value: []byte(sc.OrganizationID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", eventType, err)
	}
	return nil
}

// Close releases the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
