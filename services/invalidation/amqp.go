package invalidation

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"servicehub/models"
	"servicehub/services/slotcache"
)

// Routing keys look like servicehub.availability.<providerId>.invalidate.
const (
	routingSource = "servicehub"
	routingDomain = "availability"
	routingAction = "invalidate"
)

func RoutingKey(providerID string) string {
	return strings.Join([]string{routingSource, routingDomain, url.QueryEscape(providerID), routingAction}, ".")
}

func bindingKey() string {
	return strings.Join([]string{routingSource, routingDomain, "*", routingAction}, ".")
}

// Channel is the subset of *amqp.Channel used here.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

func declareExchange(ch Channel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return nil
}

// Publisher broadcasts invalidation events so every instance can bust its own cache.
type Publisher struct {
	ch       Channel
	exchange string
	logger   *zap.Logger
	mu       sync.Mutex
}

func NewPublisher(ch Channel, exchange string, l *zap.Logger) (*Publisher, error) {
	if err := declareExchange(ch, exchange); err != nil {
		return nil, err
	}
	return &Publisher{ch: ch, exchange: exchange, logger: logger(l)}, nil
}

func (p *Publisher) NotifyInvalidate(ctx context.Context, event models.InvalidationEvent) error {
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode invalidation event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.New().String(),
		Timestamp:    event.EmittedAt,
		Body:         body,
	}

	// channels are not meant for concurrent publishes
	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(event.ProviderID), false, false, msg)
	p.mu.Unlock()
	if err != nil {
		p.logger.Error("rabbitmq.publish.failed", zap.String("providerId", event.ProviderID), zap.Error(err))
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	p.logger.Debug("rabbitmq.publish.invalidate", zap.String("providerId", event.ProviderID), zap.String("reason", event.Reason))
	return nil
}

// Listener consumes invalidation events into a local slot cache. Each
// instance binds its own exclusive queue so every cache sees every event.
type Listener struct {
	ch       Channel
	exchange string
	store    slotcache.Store
	logger   *zap.Logger
	wg       sync.WaitGroup
}

func NewListener(ch Channel, exchange string, store slotcache.Store, l *zap.Logger) *Listener {
	return &Listener{ch: ch, exchange: exchange, store: store, logger: logger(l)}
}

func (l *Listener) Start(ctx context.Context) error {
	if err := declareExchange(l.ch, l.exchange); err != nil {
		return err
	}
	q, err := l.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare invalidation queue: %w", err)
	}
	if err := l.ch.QueueBind(q.Name, bindingKey(), l.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind invalidation queue: %w", err)
	}
	msgs, err := l.ch.Consume(q.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume invalidation queue: %w", err)
	}

	l.logger.Info("rabbitmq.listener.started", zap.String("queue", q.Name), zap.String("exchange", l.exchange))

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					l.logger.Warn("rabbitmq.listener.closed")
					return
				}
				l.handle(ctx, msg)
			}
		}
	}()
	return nil
}

func (l *Listener) handle(ctx context.Context, msg amqp.Delivery) {
	var event models.InvalidationEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil || event.ProviderID == "" {
		l.logger.Error("rabbitmq.message.malformed", zap.String("routingKey", msg.RoutingKey), zap.Error(err))
		_ = msg.Nack(false, false)
		return
	}

	dropped, err := l.store.InvalidateProvider(ctx, event.ProviderID, event.Range)
	if err != nil {
		l.logger.Error("rabbitmq.message.invalidate_failed", zap.String("providerId", event.ProviderID), zap.Error(err))
		_ = msg.Nack(false, true)
		return
	}
	l.logger.Debug("rabbitmq.message.invalidated", zap.String("providerId", event.ProviderID), zap.Int("entries", dropped))
	_ = msg.Ack(false)
}

// Wait blocks until the consume loop has exited.
func (l *Listener) Wait() {
	l.wg.Wait()
}

func (l *Listener) Stop() error {
	err := l.ch.Close()
	l.wg.Wait()
	return err
}
