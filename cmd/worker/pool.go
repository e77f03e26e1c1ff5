package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/turtacn/molsmarts/internal/bootstrap"
	"github.com/turtacn/molsmarts/internal/config"
	"github.com/turtacn/molsmarts/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
)

// consumerPool runs several members of the worker consumer group in one
// process.  Partitions are spread over the members by the group protocol.
type consumerPool struct {
	consumers []*kafka.Consumer
	logger    logging.Logger
	closeOnce sync.Once
}

// newConsumerPool builds the group members.  onExhausted, when set, runs for
// every encode request a member gives up on.
func newConsumerPool(cfg *config.Config, infra *bootstrap.Infrastructure, handler kafka.MessageHandler, onExhausted kafka.ExhaustedHandler, logger logging.Logger) (*consumerPool, error) {
	var deadLetter kafka.Publisher
	if infra.Producer != nil {
		deadLetter = infra.Producer
	}

	p := &consumerPool{logger: logger}
	for i := 0; i < cfg.Worker.Concurrency; i++ {
		c, err := kafka.NewConsumer(cfg.Kafka.ConsumerConfig(kafka.TopicEncodeRequest), deadLetter, infra.Metrics,
			logger.With(logging.Int("consumer", i)))
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("consumer %d: %w", i, err)
		}
		c.Subscribe(kafka.TopicEncodeRequest, handler)
		if onExhausted != nil {
			c.OnExhausted(kafka.TopicEncodeRequest, onExhausted)
		}
		p.consumers = append(p.consumers, c)
	}
	return p, nil
}

// Start launches every consumer loop.
func (p *consumerPool) Start(ctx context.Context) error {
	for i, c := range p.consumers {
		if err := c.Start(ctx); err != nil {
			return fmt.Errorf("consumer %d: %w", i, err)
		}
	}
	return nil
}

// Close stops the consumers, letting each finish the message it holds.
func (p *consumerPool) Close() {
	p.closeOnce.Do(func() {
		var wg sync.WaitGroup
		for _, c := range p.consumers {
			wg.Add(1)
			go func(c *kafka.Consumer) {
				defer wg.Done()
				if err := c.Close(); err != nil {
					p.logger.Warn("consumer close failed", logging.Err(err))
				}
			}(c)
		}
		wg.Wait()
	})
}

// Len returns the number of consumers.
func (p *consumerPool) Len() int { return len(p.consumers) }

// withTimeout bounds every invocation of h by d.  A non-positive d leaves h
// unbounded.
func withTimeout(h kafka.MessageHandler, d time.Duration) kafka.MessageHandler {
	if d <= 0 {
		return h
	}
	return func(ctx context.Context, msg *kafka.Message) error {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return h(ctx, msg)
	}
}

//Personal.AI order the ending
