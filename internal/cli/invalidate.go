package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mohammed-shakir/fdsnws-client/internal/config"
	"github.com/mohammed-shakir/fdsnws-client/internal/invalidation"
	"github.com/mohammed-shakir/fdsnws-client/internal/invalidation/kafkapublisher"
)

type eventPublisher interface {
	Publish(ctx context.Context, ev invalidation.Event) (int32, int64, error)
	Close() error
}

var newPublisher = func(brokers []string, topic string) (eventPublisher, error) {
	return kafkapublisher.New(brokers, topic)
}

func invalidateCmd() *cobra.Command {
	def := config.Defaults().Invalidation
	var (
		brokers string
		topic   string
		op      string
		station string
		seq     uint64
		source  string
	)

	cmd := &cobra.Command{
		Use:   "invalidate <network>",
		Short: "Publish an inventory change event for a network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev := invalidation.Event{
				Version: 1,
				Op:      op,
				Network: args[0],
				Station: station,
				TS:      time.Now().UTC(),
				Seq:     seq,
				Source:  source,
			}
			if err := ev.Validate(); err != nil {
				return err
			}

			pub, err := newPublisher(config.InvalidationCfg{Brokers: brokers}.BrokerList(), topic)
			if err != nil {
				return err
			}
			defer func() { _ = pub.Close() }()

			part, off, err := pub.Publish(cmd.Context(), ev)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "published %s %s partition=%d offset=%d\n", ev.Op, args[0], part, off)
			return err
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&brokers, "brokers", def.Brokers, "comma separated Kafka brokers")
	fl.StringVar(&topic, "topic", def.Topic, "invalidation topic")
	fl.StringVar(&op, "op", invalidation.OpUpdate, "insert, update or delete")
	fl.StringVar(&station, "station", "", "station code, informational")
	fl.Uint64Var(&seq, "seq", 0, "per-network sequence number, 0 disables replay checks")
	fl.StringVar(&source, "source", "fdsnws-query", "event source")
	return cmd
}
