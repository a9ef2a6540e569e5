// Package kafkaconsumer applies inventory invalidation events from Kafka to
// the response cache.
package kafkaconsumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"

	"github.com/mohammed-shakir/fdsnws-client/internal/invalidation"
	mylog "github.com/mohammed-shakir/fdsnws-client/internal/logger"
	"github.com/mohammed-shakir/fdsnws-client/internal/observability"
)

// Invalidator drops the cached responses of one network.
type Invalidator interface {
	InvalidateNetwork(ctx context.Context, service, network string) (int, error)
}

type Consumer struct {
	cfg    Config
	logger *slog.Logger
	target Invalidator
	dedupe *seqDedupe
	ready  atomic.Bool
}

func New(cfg Config, logger *slog.Logger, target Invalidator) *Consumer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Service == "" {
		cfg.Service = "station"
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 2 * time.Second
	}
	return &Consumer{
		cfg:    cfg,
		logger: logger,
		target: target,
		dedupe: newSeqDedupe(cfg.DedupeSize),
	}
}

// Readiness reports whether the consumer currently holds a group session.
func (c *Consumer) Readiness() (bool, []int32) {
	return c.ready.Load(), nil
}

// Start joins the consumer group and blocks until ctx is done.
func (c *Consumer) Start(ctx context.Context) error {
	if c.target == nil {
		return errors.New("kafkaconsumer: missing invalidation target")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	handler := &groupHandler{process: c.ProcessOne, ready: c.ready.Store}

	c.logger.Info("kafka invalidation consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		err := group.Consume(ctx, []string{c.cfg.Topic}, handler)
		if ctx.Err() != nil {
			c.logger.Info("kafka invalidation consumer shutting down")
			return nil
		}
		if err == nil {
			continue
		}
		observability.IncKafkaConsumerError("consume")
		c.logger.Error("kafka consumer error", "topic", c.cfg.Topic, "err", err)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.cfg.RetryBackoff):
		}
	}
}

// ProcessOne applies a single message. Invalid events are logged and
// skipped so that one bad record cannot block its partition.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	ev, err := invalidation.Decode(msg.Value)
	if err != nil {
		observability.IncKafkaConsumerError("decode")
		c.logger.WarnContext(ctx, "skipping invalid invalidation event",
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "err", err)
		return nil
	}
	ctx = mylog.WithNetwork(ctx, ev.Network)

	if c.dedupe.stale(ev.Network, ev.Seq) {
		c.logger.DebugContext(ctx, "skipping replayed invalidation event", "seq", ev.Seq)
		return nil
	}

	n, err := c.target.InvalidateNetwork(ctx, c.cfg.Service, ev.Network)
	observability.ObserveInvalidation(ev.Op, n, err)
	if err != nil {
		observability.IncKafkaConsumerError("invalidate")
		return fmt.Errorf("invalidate %s: %w", ev.Network, err)
	}
	c.dedupe.commit(ev.Network, ev.Seq)

	c.logger.InfoContext(ctx, "invalidated cached responses",
		"op", ev.Op, "network", ev.Network, "seq", ev.Seq, "keys", n)
	return nil
}
