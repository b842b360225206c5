// Package kafkaconsumer evicts cached views when table update events arrive.
package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	obs "github.com/mohammed-shakir/geodata-explorer/internal/core/observability"
	"github.com/mohammed-shakir/geodata-explorer/internal/invalidation"
	mylog "github.com/mohammed-shakir/geodata-explorer/internal/logger"
)

// Invalidator drops cached views of a table. *viewcache.Store satisfies it.
type Invalidator interface {
	InvalidateTable(ctx context.Context, table string) (int, error)
}

type Consumer struct {
	cfg    Config
	cache  Invalidator
	dedupe *versionDedupe
	zlog   *zerolog.Logger
}

func New(cfg Config, inv Invalidator, zl *zerolog.Logger) *Consumer {
	cfg = cfg.withDefaults()
	if zl == nil {
		nop := zerolog.Nop()
		zl = &nop
	}
	return &Consumer{
		cfg:    cfg,
		cache:  inv,
		dedupe: newVersionDedupe(cfg.DedupeSize),
		zlog:   zl,
	}
}

// Start joins the consumer group and processes events until ctx is done.
func (c *Consumer) Start(ctx context.Context) error {
	if c.cache == nil {
		return errors.New("kafkaconsumer: missing invalidator")
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

	c.zlog.Info().
		Strs("brokers", c.cfg.Brokers).
		Str("topic", c.cfg.Topic).
		Str("group", c.cfg.GroupID).
		Msg("kafka invalidation consumer starting")

	for {
		if err := group.Consume(ctx, []string{c.cfg.Topic}, c); err != nil && ctx.Err() == nil {
			obs.IncKafkaConsumerError("consume")
			c.zlog.Error().Err(err).Str("topic", c.cfg.Topic).Msg("kafka consumer error")
			select {
			case <-ctx.Done():
			case <-time.After(2 * time.Second):
			}
		}
		if ctx.Err() != nil {
			c.zlog.Info().Msg("kafka invalidation consumer shutting down")
			return nil
		}
	}
}

// Setup logs the partitions assigned by a rebalance.
func (c *Consumer) Setup(sess sarama.ConsumerGroupSession) error {
	c.zlog.Info().
		Int32("generation", sess.GenerationID()).
		Interface("claims", sess.Claims()).
		Msg("invalidation partitions assigned")
	return nil
}

func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim applies the events of one partition in order. An offset is
// marked only after its event was applied; a failed eviction ends the claim
// so the event is redelivered after the next rebalance.
func (c *Consumer) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	msgs := claim.Messages()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("partition %d: %w", claim.Partition(), ctx.Err())
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := c.ProcessOne(ctx, msg); err != nil {
				return fmt.Errorf("partition %d offset %d: %w", msg.Partition, msg.Offset, err)
			}
			sess.MarkMessage(msg, "")
		}
	}
}

// ProcessOne applies a single event. Undecodable or invalid events are logged
// and skipped; only a failed eviction is returned so the message is retried.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	log := mylog.FromContext(ctx, c.zlog).With().
		Str("topic", msg.Topic).
		Int32("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Logger()

	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		obs.IncKafkaConsumerError("decode")
		log.Error().Err(err).Msg("skipping undecodable event")
		return nil
	}
	if err := ev.Validate(); err != nil {
		obs.IncInvalidation("invalid")
		log.Warn().Err(err).Str("table", ev.Table).Msg("skipping invalid event")
		return nil
	}

	pos := position{ts: ev.TS.UnixNano(), partition: msg.Partition, offset: msg.Offset}
	if c.dedupe.stale(ev.Table, pos) {
		obs.IncInvalidation("duplicate")
		log.Debug().Str("table", ev.Table).Time("ts", ev.TS).Msg("event already applied")
		return nil
	}

	n, err := c.cache.InvalidateTable(ctx, ev.Table)
	if err != nil {
		obs.IncKafkaConsumerError("invalidate")
		log.Error().Err(err).Str("table", ev.Table).Msg("invalidate failed")
		return fmt.Errorf("invalidate %q: %w", ev.Table, err)
	}
	c.dedupe.record(ev.Table, pos)

	obs.IncInvalidation("applied")
	log.Info().
		Str("op", ev.Op).
		Str("table", ev.Table).
		Int("evicted", n).
		Msg("invalidated views")
	return nil
}
