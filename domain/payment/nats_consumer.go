package payment

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2/log"
	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"payment-orchestrator/infrastructure/queue"
	"payment-orchestrator/infrastructure/service"
)

const (
	consumerQueue = "payment-postprocessing"

	defaultMaxAckPending = 40
	defaultAckWait       = 30 * time.Second
	defaultMaxDeliver    = 3
)

type IConsumer interface {
	StartProcess() error
	Close()
}

// natsConsumer drives the post-processing pipeline: webhook dispatch, receipt
// generation, analytics update and fraud-model feedback. Every sink failure is
// logged with the correlation ID and swallowed; the pipeline's result is
// always "attempted", never a cause of orchestration failure.
type natsConsumer struct {
	eventQueue    *queue.EventQueue
	webhooks      service.Notifier
	receipts      service.Notifier
	fraudFeedback service.Notifier
	analytics     *AnalyticsSink
	ctx           context.Context
	cancelCtx     context.CancelFunc
	maxAckPending int
	maxDeliver    int
}

func NewNatsConsumer(
	eventQueue *queue.EventQueue,
	webhooks service.Notifier,
	receipts service.Notifier,
	fraudFeedback service.Notifier,
	analytics *AnalyticsSink,
) IConsumer {
	maxAckPending := defaultMaxAckPending
	if raw := os.Getenv("NATS_MAX_ACK_PENDING"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val > 0 {
			maxAckPending = val
		}
	}

	maxDeliver := defaultMaxDeliver
	if raw := os.Getenv("NATS_MAX_DELIVER"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val > 0 {
			maxDeliver = val
		}
	}

	ctx, cancelCtx := context.WithCancel(context.Background())

	return &natsConsumer{
		eventQueue:    eventQueue,
		webhooks:      webhooks,
		receipts:      receipts,
		fraudFeedback: fraudFeedback,
		analytics:     analytics,
		ctx:           ctx,
		cancelCtx:     cancelCtx,
		maxAckPending: maxAckPending,
		maxDeliver:    maxDeliver,
	}
}

func (c *natsConsumer) StartProcess() error {
	sub, err := c.eventQueue.JetStream.QueueSubscribeSync(
		c.eventQueue.Subject,
		consumerQueue,
		nats.AckWait(defaultAckWait),
		nats.ManualAck(),
		nats.DeliverAll(),
		nats.ReplayInstant(),
		nats.MaxDeliver(c.maxDeliver),
		nats.MaxAckPending(c.maxAckPending),
	)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-c.ctx.Done():
			return nil
		default:
			msg, err := sub.NextMsgWithContext(c.ctx)
			if err != nil {
				continue
			}
			go c.processMessage(msg)
		}
	}
}

func (c *natsConsumer) processMessage(msg *nats.Msg) {
	var event service.PaymentEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		msg.Term()
		return
	}

	c.fanOut(event)

	// The message is acked once every sink has been attempted; individual
	// failures were already logged.
	msg.Ack()
}

func (c *natsConsumer) fanOut(event service.PaymentEvent) {
	g, ctx := errgroup.WithContext(c.ctx)

	g.Go(c.sinkTask(ctx, "webhook", event, c.webhooks.Notify))
	g.Go(c.sinkTask(ctx, "fraud-feedback", event, c.fraudFeedback.Notify))
	g.Go(c.sinkTask(ctx, "analytics", event, c.analytics.Record))

	if event.GenerateReceipt && event.Status == string(StatusCompleted) {
		g.Go(c.sinkTask(ctx, "receipt", event, c.receipts.Notify))
	}

	g.Wait()
}

func (c *natsConsumer) sinkTask(
	ctx context.Context,
	name string,
	event service.PaymentEvent,
	run func(context.Context, service.PaymentEvent) error,
) func() error {
	return func() error {
		if err := run(ctx, event); err != nil {
			log.Errorf("post-processing sink %s failed correlationId=%s transactionId=%s: %v",
				name, event.CorrelationID, event.TransactionID, err)
		}
		// Sink errors never propagate past the pipeline boundary.
		return nil
	}
}

func (c *natsConsumer) Close() {
	c.cancelCtx()
}
