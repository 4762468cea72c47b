package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher sends events to RabbitMQ.  Each publish dials its own
// connection; finalizing is rare enough that no pool is kept.
// Failures are logged and returned so callers may ignore them.
type Publisher struct {
	url string
	log logrus.FieldLogger
}

func NewPublisher(url string, log logrus.FieldLogger) *Publisher {
	return &Publisher{url: url, log: log.WithField("component", "publisher")}
}

// PublishSessionFinalized publishes ev to SessionFinalizedQueue as a
// persistent JSON message.
func (p *Publisher) PublishSessionFinalized(ctx context.Context, ev SessionFinalizedEvent) error {
	log := p.log.WithFields(logrus.Fields{"event_id": ev.EventID, "session_id": ev.SessionID})

	body, err := json.Marshal(ev)
	if err != nil {
		log.WithError(err).Warn("marshal event failed")
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.WithError(err).Warn("rabbitmq dial failed")
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq channel open failed")
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(SessionFinalizedQueue, true, false, false, false, nil); err != nil {
		log.WithError(err).Warn("rabbitmq queue declare failed")
		return fmt.Errorf("queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.MessageID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", SessionFinalizedQueue, false, false, pub); err != nil {
		log.WithError(err).Warn("rabbitmq publish failed")
		return fmt.Errorf("publish: %w", err)
	}
	log.Debug("session finalized event published")
	return nil
}
