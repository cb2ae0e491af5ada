package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/astopo/pkg/settings"
	"github.com/newtron-network/astopo/pkg/store"
)

var (
	publishAddr    string
	publishDB      int
	publishClear   bool
	publishTimeout time.Duration
)

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Write the topology into Redis",
		Long: `Build the topology and write it into Redis as AS|<asn>,
DEVICE|<node> and INTERFACE|<node>|<ifname> hashes, replacing any
previously published topology in one transaction. Other keys are left alone.

  astopo publish -i ./topology-data --redis 127.0.0.1:6379
  astopo publish --clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := publishAddr
			if addr == "" {
				s, err := settings.Load()
				if err != nil {
					return fmt.Errorf("loading settings: %w", err)
				}
				addr = s.GetRedisAddr()
			}

			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()

			p := store.NewPublisher(addr, publishDB)
			defer p.Close()
			if err := p.Ping(ctx); err != nil {
				return err
			}

			if publishClear {
				n, err := p.Clear(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("%s removed %d keys from %s db %d\n", green("✓"), n, addr, publishDB)
				return nil
			}

			_, topo, err := buildTopology()
			if err != nil {
				return err
			}
			n, err := p.Publish(ctx, topo)
			if err != nil {
				return err
			}
			fmt.Printf("%s published %d entries to %s db %d\n", green("✓"), n, addr, publishDB)
			return nil
		},
	}
	cmd.Flags().StringVar(&publishAddr, "redis", "", "Redis address (default: redis_addr setting)")
	cmd.Flags().IntVar(&publishDB, "db", store.DefaultDB, "Redis database")
	cmd.Flags().BoolVar(&publishClear, "clear", false, "remove the published topology instead")
	cmd.Flags().DurationVar(&publishTimeout, "timeout", 30*time.Second, "overall timeout")
	return cmd
}
