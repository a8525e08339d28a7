package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/arjunmalik/editcore/internal/config"
	"github.com/arjunmalik/editcore/internal/logging"
	"github.com/arjunmalik/editcore/pkg/models"
)

const (
	MediaEventsQueueName = "media_events"
	ExchangeName         = "editcore"
)

// Event types. The API publishes asset.uploaded for the processing
// pipeline; the pipeline publishes the rest back for the worker.
const (
	EventAssetUploaded    = "asset.uploaded"
	EventAssetReady       = "asset.ready"
	EventAssetRegenerated = "asset.regenerated"
	EventThumbnailReady   = "asset.thumbnail_ready"
	EventFaceTracksReady  = "asset.face_tracks_ready"
)

// Event is one media pipeline notification. Asset carries the full record
// for ready/regenerated events; the other types only reference AssetID.
type Event struct {
	Type      string        `json:"type"`
	AssetID   string        `json:"asset_id"`
	Asset     *models.Asset `json:"asset,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Queue provides message queue operations
type Queue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logging.Logger
}

// New creates a new queue client
func New(cfg config.QueueConfig, logger *logging.Logger) (*Queue, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Vhost)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Declare exchange
	err = channel.ExchangeDeclare(
		ExchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	// Declare queue
	_, err = channel.QueueDeclare(
		MediaEventsQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// Bind queue to exchange
	err = channel.QueueBind(
		MediaEventsQueueName,
		MediaEventsQueueName,
		ExchangeName,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	return &Queue{
		conn:    conn,
		channel: channel,
		logger:  logger,
	}, nil
}

// Close closes the queue connection
func (q *Queue) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

// PublishEvent publishes a media event
func (q *Queue) PublishEvent(ctx context.Context, event *Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = q.channel.PublishWithContext(ctx,
		ExchangeName,
		MediaEventsQueueName,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    event.Timestamp,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// ConsumeEvents starts consuming media events from the queue. Handler
// failures go to the retry queue with the delivery's retry count; after
// MaxRetries the event lands in the DLQ. Only when the retry publish
// itself fails does the message requeue in place.
func (q *Queue) ConsumeEvents(ctx context.Context, handler func(*Event) error) error {
	// Set QoS to limit concurrent processing
	err := q.channel.Qos(
		1,     // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := q.channel.Consume(
		MediaEventsQueueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var event Event
				if err := json.Unmarshal(msg.Body, &event); err != nil {
					q.logger.WithError(err).Warn("dropping malformed media event")
					msg.Nack(false, false)
					continue
				}

				if err := handler(&event); err != nil {
					retries := deliveryRetryCount(msg.Headers)
					q.logger.WithAssetID(event.AssetID).WithError(err).Warnf("media event handler failed (attempt %d)", retries+1)
					if perr := q.PublishToRetryQueue(ctx, &event, retries); perr != nil {
						q.logger.WithAssetID(event.AssetID).WithError(perr).Error("retry publish failed, requeueing in place")
						msg.Nack(false, true)
						continue
					}
					msg.Ack(false)
				} else {
					msg.Ack(false)
				}
			}
		}
	}()

	return nil
}

// deliveryRetryCount reads x-retry-count from a delivery's headers. AMQP
// table integers decode with varying widths, and first deliveries carry no
// header at all.
func deliveryRetryCount(headers amqp.Table) int {
	switch v := headers["x-retry-count"].(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return 0
	}
}

// GetQueueDepth returns the number of messages in the queue
func (q *Queue) GetQueueDepth() (int, error) {
	info, err := q.channel.QueueInspect(MediaEventsQueueName)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect queue: %w", err)
	}

	return info.Messages, nil
}
