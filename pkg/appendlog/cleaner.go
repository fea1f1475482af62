package appendlog

import (
	"context"
	"fmt"
	"time"

	"github.com/bft-labs/appendlog/internal/logbuffer"
	"github.com/bft-labs/appendlog/pkg/log"
)

// cleanerSweepInterval backstops the rotation signal so a partition marked
// for cleaning is never left dirty past one interval.
const cleanerSweepInterval = 500 * time.Millisecond

// cleaner zero-fills retired partitions in the background. Rotation
// signals it after marking a partition; with three partitions it has two
// full term lifetimes to finish before the active cursor wraps back.
//
// A panic here is unrecoverable: an unclean term would produce torn reads
// on reuse. The failure is recorded through onFatal so the lifecycle
// reaches its terminal cleaner-crashed state, then the panic is re-raised
// to halt the process.
type cleaner struct {
	lb      *logbuffer.LogBuffers
	logger  log.Logger
	ch      chan struct{}
	onFatal func(error)
}

func newCleaner(lb *logbuffer.LogBuffers, logger log.Logger, onFatal func(error)) *cleaner {
	return &cleaner{
		lb:      lb,
		logger:  logger,
		ch:      make(chan struct{}, 1),
		onFatal: onFatal,
	}
}

// signal requests a sweep. Non-blocking; a pending request is enough.
func (c *cleaner) signal() {
	select {
	case c.ch <- struct{}{}:
	default:
	}
}

// run sweeps on demand and on the backstop interval until the context is
// canceled.
func (c *cleaner) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("cleaner: %v", r)
			c.logger.Error("cleaner panic, halting", log.Err(err))
			if c.onFatal != nil {
				c.onFatal(err)
			}
			panic(r)
		}
	}()

	ticker := time.NewTicker(cleanerSweepInterval)
	defer ticker.Stop()

	c.sweep()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.ch:
			c.sweep()
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep zero-fills every partition currently marked for cleaning.
func (c *cleaner) sweep() {
	for i := 0; i < logbuffer.PartitionCount; i++ {
		if logbuffer.StatusVolatile(c.lb.MetaDataBuffer(i)) == logbuffer.PartitionNeedsCleaning {
			c.lb.CleanPartition(i)
			c.logger.Debug("partition cleaned", log.Int("partition", i))
		}
	}
}
