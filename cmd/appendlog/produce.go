package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/appendlog/internal/cliconfig"
	"github.com/bft-labs/appendlog/pkg/appendlog"
	"github.com/bft-labs/appendlog/pkg/log"
)

// newProduceCommand writes generated frames into the log from one or more
// concurrent producers.
func newProduceCommand(cfg *cliconfig.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "produce",
		Short: "Claim and commit frames into the log",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProduce(cmd.Context(), cfg)
		},
	}
	f := cmd.Flags()
	f.IntVar(&cfg.Producers, "producers", cfg.Producers, "number of concurrent producers")
	f.IntVar(&cfg.PayloadSize, "payload-size", cfg.PayloadSize, "payload bytes per message")
	f.IntVar(&cfg.MessagesPerSec, "rate", cfg.MessagesPerSec, "messages per second per producer (0 = unthrottled)")
	f.IntVar(&cfg.MessageCount, "count", cfg.MessageCount, "messages per producer (0 = until interrupted)")
	return cmd
}

func runProduce(ctx context.Context, cfg *cliconfig.Config) error {
	if cfg.PayloadSize < 8 {
		return fmt.Errorf("payload size must be at least 8 bytes")
	}
	logger := log.NewZerologLogger(cliconfig.Logger())
	alog, err := appendlog.New(appendlog.Config{
		Path:                   cfg.Path,
		TermLength:             appendlog.TermLengthForSize(cfg.TermLength()),
		StreamID:               int32(cfg.StreamID),
		SpinLimitBeforeUnblock: cfg.SpinLimit,
	}, appendlog.WithLogger(logger))
	if err != nil {
		return err
	}
	defer alog.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var produced atomic.Int64
	var wg sync.WaitGroup
	start := time.Now()

	for p := 0; p < cfg.Producers; p++ {
		wg.Add(1)
		go func(producer int) {
			defer wg.Done()
			var throttle *time.Ticker
			if cfg.MessagesPerSec > 0 {
				throttle = time.NewTicker(time.Second / time.Duration(cfg.MessagesPerSec))
				defer throttle.Stop()
			}
			for i := 0; cfg.MessageCount == 0 || i < cfg.MessageCount; i++ {
				if ctx.Err() != nil {
					return
				}
				claim, err := alog.Claim(int32(cfg.PayloadSize))
				if err != nil {
					logger.Error("claim failed", log.Err(err))
					return
				}
				payload := claim.Buffer()
				binary.LittleEndian.PutUint32(payload, uint32(producer))
				binary.LittleEndian.PutUint32(payload[4:], uint32(i))
				claim.Commit()
				produced.Add(1)

				if throttle != nil {
					select {
					case <-ctx.Done():
						return
					case <-throttle.C:
					}
				}
			}
		}(p)
	}

	wg.Wait()
	elapsed := time.Since(start)
	fmt.Printf("produced %d messages in %s (position %d)\n",
		produced.Load(), elapsed.Round(time.Millisecond), alog.Position())
	return ctx.Err()
}
