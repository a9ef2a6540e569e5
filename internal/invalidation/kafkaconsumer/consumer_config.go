package kafkaconsumer

import (
	"time"

	"github.com/mohammed-shakir/fdsnws-client/internal/config"
)

type Config struct {
	Brokers             []string
	Topic               string
	GroupID             string
	Service             string
	SessionTimeout      time.Duration
	Heartbeat           time.Duration
	RebalanceTimeout    time.Duration
	RetryBackoff        time.Duration
	InitialOffsetOldest bool
	DedupeSize          int
}

func FromConfig(ic config.InvalidationCfg) Config {
	return Config{
		Brokers:             ic.BrokerList(),
		Topic:               ic.Topic,
		GroupID:             ic.GroupID,
		Service:             "station",
		SessionTimeout:      30 * time.Second,
		Heartbeat:           3 * time.Second,
		RebalanceTimeout:    30 * time.Second,
		RetryBackoff:        2 * time.Second,
		InitialOffsetOldest: true,
		DedupeSize:          4096,
	}
}
