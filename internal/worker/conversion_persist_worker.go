package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"ink2deck/internal/model"
	"ink2deck/internal/platform/rabbitmq"
)

type EventStore interface {
	Create(ctx context.Context, event *model.ConversionEvent) error
}

// ConversionPersistWorker drains the conversion queue into the database.
// Undecodable or unstorable deliveries are dropped without requeue.
type ConversionPersistWorker struct {
	conn      *amqp.Connection
	store     EventStore
	queueName string
	log       zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewConversionPersistWorker(conn *amqp.Connection, store EventStore, queueName string, log zerolog.Logger) *ConversionPersistWorker {
	return &ConversionPersistWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
		log:       log.With().Str("component", "conversion_worker").Logger(),
	}
}

func (w *ConversionPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker prefetch failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					w.log.Warn().Msg("delivery channel closed")
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					w.log.Error().Err(err).Msg("drop conversion event")
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	w.log.Info().Str("queue", w.queueName).Msg("worker started")
	return nil
}

func (w *ConversionPersistWorker) handle(ctx context.Context, body []byte) error {
	var event model.ConversionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode conversion event failed: %w", err)
	}
	event.ID = 0
	if err := w.store.Create(ctx, &event); err != nil {
		return fmt.Errorf("persist conversion event failed: %w", err)
	}
	return nil
}

func (w *ConversionPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
