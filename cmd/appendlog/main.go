package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/appendlog/internal/cliconfig"
)

const helpDescription = `
Produce to, consume from, and inspect a shared-memory append log.

The log is a memory-mapped file partitioned into three rotating terms.
Any number of producers (goroutines or processes) claim and commit
frames; a single consumer polls them in order. Point every command at
the same file; cooperating processes must agree on the term length.
`

var exampleUsage = strings.TrimSpace(`
  appendlog produce --path /dev/shm/demo.log --producers 4 --count 100000
  appendlog consume --path /dev/shm/demo.log --wait
  appendlog inspect --path /dev/shm/demo.log
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:     "appendlog",
		Short:   "Shared-memory append log tooling",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.appendlog/config.toml),
			// then env, then apply flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
			cmd.InheritedFlags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return fmt.Errorf("apply config: %w", err)
				}
			}
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return fmt.Errorf("apply env: %w", err)
			}
			return cfg.Validate()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "config file (default $HOME/.appendlog/config.toml)")
	pf.StringVar(&cfg.Path, "path", "", "log file path")
	pf.IntVar(&cfg.TermLengthBytes, "term-length", cfg.TermLengthBytes, "term length in bytes (power of two)")
	pf.IntVar(&cfg.BufferSizeMB, "buffer-size-mb", 0, "requested buffer size in MiB, rounded up to a power of two (overrides --term-length)")
	pf.IntVar(&cfg.SpinLimit, "spin-limit", cfg.SpinLimit, "contested claim retries before a stalled slot is cleared")
	pf.IntVar(&cfg.FragmentLimit, "fragment-limit", cfg.FragmentLimit, "max frames delivered per poll iteration")
	pf.IntVar(&cfg.StreamID, "stream-id", cfg.StreamID, "stream id stamped into frame headers")

	root.AddCommand(newProduceCommand(&cfg))
	root.AddCommand(newConsumeCommand(&cfg))
	root.AddCommand(newInspectCommand(&cfg))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
