// Package kafkapublisher sends inventory change events to the invalidation
// topic.
package kafkapublisher

import (
	"context"
	"fmt"
	"strings"

	"github.com/IBM/sarama"
	json "github.com/goccy/go-json"

	"github.com/mohammed-shakir/fdsnws-client/internal/invalidation"
)

type Publisher struct {
	topic string
	prod  sarama.SyncProducer
}

func New(brokers []string, topic string) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	// events of one network land on one partition and stay ordered
	cfg.Producer.Partitioner = sarama.NewHashPartitioner

	prod, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafkapublisher: create producer: %w", err)
	}
	return NewWithProducer(prod, topic), nil
}

func NewWithProducer(prod sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{topic: topic, prod: prod}
}

// Publish validates ev and sends it keyed by network. It returns the
// partition and offset the broker assigned.
func (p *Publisher) Publish(ctx context.Context, ev invalidation.Event) (int32, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	ev.Network = strings.ToUpper(strings.TrimSpace(ev.Network))
	if err := ev.Validate(); err != nil {
		return 0, 0, err
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return 0, 0, fmt.Errorf("kafkapublisher: marshal: %w", err)
	}
	part, off, err := p.prod.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.Network),
		Value: sarama.ByteEncoder(b),
	})
	if err != nil {
		return 0, 0, fmt.Errorf("kafkapublisher: send: %w", err)
	}
	return part, off, nil
}

func (p *Publisher) Close() error { return p.prod.Close() }
