package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/waste-pickup-service/pkg/logger"
)

// PickupLogFile is the file the consumer appends to inside its log dir.
const PickupLogFile = "pickup.log"

// StartPickupConsumer connects to RabbitMQ, declares the pickup.booked
// queue and appends every message to <dir>/pickup.log as one line.  It
// reconnects with exponential backoff and returns only when ctx is done.
// Messages that cannot be handled are rejected without requeue.
func StartPickupConsumer(ctx context.Context, url, dir string, log logger.Logger) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Warn("pickup-consumer: failed to dial broker", "error", err, "retry_in", backoff.String())
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(ctx, conn, dir, log)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Warn("pickup-consumer: consume loop ended, reconnecting", "error", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, dir string, log logger.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warn("pickup-consumer: set QoS failed", "error", err)
    }
    if _, err := ch.QueueDeclare(PickupBookedQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(PickupBookedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := handleMessage(dir, d.Body); err != nil {
                log.Error("pickup-consumer: handle message failed", "error", err, "message_id", d.MessageId)
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func handleMessage(dir string, body []byte) error {
    var ev PickupBookedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", dir, err)
    }
    f, err := os.OpenFile(filepath.Join(dir, PickupLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(formatEvent(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatEvent(ev PickupBookedEvent) string {
    return fmt.Sprintf("[%s] Pickup booked | event_id=%s | customer_id=%d | waste_profile_id=%d | bookings=%s | calendar_entries=%s\n",
        ev.BookedAt, ev.EventID, ev.CustomerID, ev.WasteProfileID, joinIDs(ev.BookingIDs), joinIDs(ev.CalendarEntryIDs))
}

func joinIDs(ids []uint64) string {
    parts := make([]string, len(ids))
    for i, id := range ids {
        parts[i] = fmt.Sprint(id)
    }
    return "[" + strings.Join(parts, ",") + "]"
}
