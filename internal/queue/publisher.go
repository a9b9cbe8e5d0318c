package queue

import (
    "context"
    "encoding/json"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/waste-pickup-service/pkg/logger"
)

// Publisher sends domain events to RabbitMQ.  Each publish dials its own
// connection; errors are logged and returned so the caller can ignore them
// without interrupting the request.
type Publisher struct {
    url string
    log logger.Logger
}

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string, log logger.Logger) *Publisher {
    return &Publisher{url: url, log: log}
}

// PublishPickupBooked publishes ev to the pickup.booked queue as a
// persistent message.  An empty EventID is filled with a random UUID,
// which is also used as the AMQP message id.
func (p *Publisher) PublishPickupBooked(ctx context.Context, ev PickupBookedEvent) error {
    if ev.EventID == "" {
        ev.EventID = uuid.NewString()
    }
    body, err := json.Marshal(ev)
    if err != nil {
        p.log.Error("rabbitmq: marshal event failed", "error", err)
        return err
    }

    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.log.Warn("rabbitmq: dial failed", "error", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.Warn("rabbitmq: channel open failed", "error", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(
        PickupBookedQueue, // name
        true,              // durable
        false,             // autoDelete
        false,             // exclusive
        false,             // noWait
        nil,               // args
    ); err != nil {
        p.log.Warn("rabbitmq: queue declare failed", "error", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.EventID,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",                // default exchange
        PickupBookedQueue, // routing key = queue name
        false,             // mandatory
        false,             // immediate
        pub,
    ); err != nil {
        p.log.Warn("rabbitmq: publish failed", "error", err)
        return err
    }
    p.log.Debug("pickup.booked published", "event_id", ev.EventID, "bookings", len(ev.BookingIDs))
    return nil
}
