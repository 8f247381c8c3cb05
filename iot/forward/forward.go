/*Package forward ships reconciled live updates to a Kafka topic, where the
log pipeline picks them up. Forwarding is fire-and-forget: it never blocks
the broker event path and drops records when the queue is full.
*/
package forward

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/segmentio/kafka-go"

	"github.com/nthing-link/farmsync/core/logger"
	"github.com/nthing-link/farmsync/farm"
)

// Record is one forwarded live update.
type Record struct {
	FarmID     string            `json:"farm_id"`
	GatewayID  string            `json:"gateway_id"`
	Class      farm.GatewayClass `json:"gateway_class"`
	Action     string            `json:"action"`
	Payload    json.RawMessage   `json:"payload"`
	ReceivedAt time.Time         `json:"received_at"`
}

// messageWriter is the part of kafka.Writer the forwarder uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Forwarder writes records to Kafka from a single background goroutine fed
// by a bounded queue.
type Forwarder struct {
	writer messageWriter

	mu     sync.Mutex
	closed bool
	queue  chan Record

	closeOnce sync.Once
	done      chan struct{}
}

// Builder is a builder helper for the Forwarder.
type Builder struct {
	// Brokers is the list of Kafka bootstrap addresses. Mandatory.
	Brokers []string
	// Topic is the destination topic. Mandatory.
	Topic string
	// QueueSize bounds the in-flight queue. Optional, defaults to 256.
	QueueSize int
}

// New returns a running forwarder.
func New(b *Builder) *Forwarder {
	if len(b.Brokers) == 0 {
		panic("kafka brokers missing")
	}
	if b.Topic == "" {
		panic("kafka topic missing")
	}
	queueSize := b.QueueSize
	if queueSize == 0 {
		queueSize = 256
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(b.Brokers...),
		Topic:    b.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	return newWithWriter(writer, queueSize)
}

func newWithWriter(writer messageWriter, queueSize int) *Forwarder {
	f := &Forwarder{
		writer: writer,
		queue:  make(chan Record, queueSize),
		done:   make(chan struct{}),
	}
	go f.run()
	return f
}

// Offer enqueues a record for forwarding. It never blocks; when the queue
// is full the record is dropped and counted into the log. Offer is safe to
// call after Close, records are simply dropped then. Broker handlers can
// still be in flight while the session shuts down, so shutdown ordering
// must not be relied on here.
func (f *Forwarder) Offer(rec Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.queue <- rec:
	default:
		logger.ForFarm(rec.FarmID).Warnln("forward queue full, dropping record for", rec.GatewayID)
	}
}

// Close stops the forwarder and flushes what is still queued.
func (f *Forwarder) Close() {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closed = true
		close(f.queue)
		f.mu.Unlock()
		<-f.done
		if err := f.writer.Close(); err != nil {
			logger.Default().Warnln("closing kafka writer:", err)
		}
	})
}

func (f *Forwarder) run() {
	defer close(f.done)
	for rec := range f.queue {
		body, err := json.Marshal(rec)
		if err != nil {
			logger.Default().Warnln("cannot marshal record:", err)
			continue
		}
		msg := kafka.Message{
			Key:   []byte(rec.FarmID + "/" + rec.GatewayID),
			Value: body,
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = f.writer.WriteMessages(ctx, msg)
		cancel()
		if err != nil {
			// at-most-once all the way through: log and move on
			logger.ForFarm(rec.FarmID).Warnln("forward failed:", err)
		}
	}
}
