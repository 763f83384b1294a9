package events

import (
	"context"
	"errors"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/leavedesk/service-booking/internal/notify"
	"github.com/leavedesk/service-booking/pkg/kafka"
)

// NotificationConsumer turns booking events into LINE messages to the owner.
type NotificationConsumer struct {
	consumer *kafka.Consumer
	pusher   notify.Pusher
	logger   *zap.Logger
}

// NewNotificationConsumer creates a new NotificationConsumer.
func NewNotificationConsumer(
	brokers []string,
	groupID string,
	pusher notify.Pusher,
	logger *zap.Logger,
) *NotificationConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicBookingEvents, logger)
	return &NotificationConsumer{
		consumer: consumer,
		pusher:   pusher,
		logger:   logger,
	}
}

// Start begins consuming booking events. This blocks until the context is cancelled.
func (c *NotificationConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *NotificationConsumer) Close() error {
	return c.consumer.Close()
}

func (c *NotificationConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from booking topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}
	return c.handleEvent(ctx, cloudEvent)
}

func (c *NotificationConsumer) handleEvent(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	userID, text, err := renderNotification(cloudEvent)
	if err != nil {
		c.logger.Error("failed to parse booking event data",
			zap.String("type", cloudEvent.Type),
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}
	if text == "" {
		c.logger.Debug("ignoring unhandled booking event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}

	if err := c.pusher.PushText(ctx, userID, text); err != nil {
		var statusErr *notify.StatusError
		if errors.As(err, &statusErr) && !statusErr.Temporary() {
			c.logger.Error("LINE rejected booking notification, dropping it",
				zap.String("type", cloudEvent.Type),
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return nil // Resending the same request cannot succeed
		}
		c.logger.Error("failed to push booking notification",
			zap.String("type", cloudEvent.Type),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("booking notification sent",
		zap.String("type", cloudEvent.Type),
		zap.String("user_id", userID),
	)
	return nil
}

// renderNotification returns the recipient and message text for an event,
// or an empty text for event types that do not notify anyone.
func renderNotification(ce kafka.CloudEvent) (string, string, error) {
	switch ce.Type {
	case BookingCreated:
		var evt BookingCreatedEvent
		if err := ce.ParseData(&evt); err != nil {
			return "", "", err
		}
		return evt.UserID, fmt.Sprintf("Your %s leave is booked: %s (%d day%s).",
			evt.Category, dateRange(evt.Date, evt.EndDate), evt.Days, plural(evt.Days)), nil

	case BookingUpdated:
		var evt BookingUpdatedEvent
		if err := ce.ParseData(&evt); err != nil {
			return "", "", err
		}
		return evt.UserID, fmt.Sprintf("Your leave was changed from %s to %s (%d day%s).",
			dateRange(evt.PreviousDate, evt.PreviousEndDate), dateRange(evt.Date, evt.EndDate), evt.Days, plural(evt.Days)), nil

	case BookingDeleted:
		var evt BookingDeletedEvent
		if err := ce.ParseData(&evt); err != nil {
			return "", "", err
		}
		return evt.UserID, fmt.Sprintf("Your leave on %s was cancelled.", dateRange(evt.Date, evt.EndDate)), nil

	default:
		return "", "", nil
	}
}

func dateRange(start, end string) string {
	if end == "" || end == start {
		return start
	}
	return start + " to " + end
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
