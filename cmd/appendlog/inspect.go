package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bft-labs/appendlog/internal/cliconfig"
	"github.com/bft-labs/appendlog/internal/logbuffer"
)

// newInspectCommand dumps log metadata, partition tails and statuses, and
// any gaps between committed frames. Purely diagnostic; it consumes
// nothing.
func newInspectCommand(cfg *cliconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Dump log metadata, partition state, and gaps",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cfg)
		},
	}
}

func runInspect(cfg *cliconfig.Config) error {
	info, err := os.Stat(cfg.Path)
	if err != nil {
		return err
	}
	termLength, err := logbuffer.TermLengthForLogLength(info.Size())
	if err != nil {
		return err
	}

	lb, err := logbuffer.Open(cfg.Path, termLength)
	if err != nil {
		return err
	}
	defer lb.Close()

	logMeta := lb.LogMetaData()
	active := logbuffer.ActivePartitionIndex(logMeta)
	fmt.Printf("term length:      %d\n", termLength)
	fmt.Printf("initial term id:  %d\n", logbuffer.InitialTermID(logMeta))
	fmt.Printf("active partition: %d\n", active)

	for i := 0; i < logbuffer.PartitionCount; i++ {
		meta := lb.MetaDataBuffer(i)
		rawTail := logbuffer.RawTailVolatile(meta)
		termID := logbuffer.TermIDFromRawTail(rawTail)
		offset := logbuffer.CappedTermOffset(rawTail, termLength)
		fmt.Printf("partition %d: term_id=%d tail=%d status=%s\n",
			i, termID, offset, statusString(logbuffer.StatusVolatile(meta)))

		gaps := 0
		logbuffer.ScanForGap(lb.TermBuffer(i), termID, 0, offset, func(g logbuffer.Gap) {
			gaps++
			fmt.Printf("  gap: term_id=%d offset=%d length=%d\n", g.TermID, g.Offset, g.Length)
		})
		if gaps == 0 && offset > 0 {
			fmt.Printf("  frames contiguous to tail\n")
		}
	}
	return nil
}

func statusString(status int32) string {
	switch status {
	case logbuffer.PartitionClean:
		return "clean"
	case logbuffer.PartitionNeedsCleaning:
		return "needs-cleaning"
	case logbuffer.PartitionInUse:
		return "in-use"
	default:
		return "unknown"
	}
}
