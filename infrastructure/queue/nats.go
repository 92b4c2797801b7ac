package queue

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/nats-io/nats.go"
)

const (
	subject    = "payments.events"
	streamName = "Payment-Events"
)

// EventQueue carries post-processing events. Publishing is asynchronous so the
// synchronous payment path never waits on the broker.
type EventQueue struct {
	JetStream  nats.JetStreamContext
	NatsConn   *nats.Conn
	Subject    string
	StreamName string
}

func NewEventQueue() (*EventQueue, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}

	natsConn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, err
	}

	js, err := natsConn.JetStream()
	if err != nil {
		return nil, err
	}

	queue := &EventQueue{
		NatsConn:   natsConn,
		JetStream:  js,
		Subject:    subject,
		StreamName: streamName,
	}

	if err = queue.createStream(); err != nil {
		return nil, err
	}
	return queue, nil
}

func (q *EventQueue) Publish(data []byte) error {
	_, err := q.JetStream.PublishAsync(q.Subject, data)
	return err
}

func (q *EventQueue) createStream() error {
	now := time.Now().UTC()
	streamCfg := nats.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subject},
		Retention: nats.WorkQueuePolicy,
		Storage:   nats.MemoryStorage,
		Replicas:  0,
	}
	stream, err := q.JetStream.AddStream(&streamCfg)
	if err != nil {
		return err
	}

	if stream.Created.After(now) {
		log.Info("payment events stream created")
	}
	return nil
}
