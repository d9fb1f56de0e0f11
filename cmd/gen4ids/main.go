// Command gen4ids runs GPU seed searches from the shell.
//
// Usage:
//
//	gen4ids search <tid> <sid> [flags]
//	gen4ids encode <tid> <sid>
//	gen4ids detect
//	gen4ids kernel
//
// Example:
//
//	# Search with a custom kernel on the high-performance adapter
//	gen4ids search 12345 54321 --kernel ./seeds.wgsl --power high
//
//	# Dry run on the CPU mock backend
//	gen4ids search 0 0 --backend mock
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openfluke/gen4ids"
	"github.com/openfluke/gen4ids/config"
	"github.com/openfluke/gen4ids/detector"
	"github.com/openfluke/gen4ids/kernel"
	"github.com/openfluke/gen4ids/search"
)

type flags struct {
	configPath string
	backend    string
	kernelPath string
	power      string
	logLevel   string
	cache      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:          "gen4ids",
		Short:        "Search the 32-bit seed space on a GPU",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&f.backend, "backend", "", "backend name ("+fmt.Sprint(search.Backends())+")")
	root.PersistentFlags().StringVar(&f.kernelPath, "kernel", "", "WGSL kernel file (default: embedded reference kernel)")
	root.PersistentFlags().StringVar(&f.power, "power", "", "adapter power preference: low, high")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "debug, info, warn, error")

	searchCmd := &cobra.Command{
		Use:   "search <tid> <sid>",
		Short: "Run one search and print the matching seeds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, f, args)
		},
	}
	searchCmd.Flags().BoolVar(&f.cache, "cache-session", false, "reuse one device across searches")

	root.AddCommand(
		searchCmd,
		&cobra.Command{
			Use:   "encode <tid> <sid>",
			Short: "Print the packed 32-bit search key",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				tid, sid, err := parseIDs(args)
				if err != nil {
					return err
				}
				key := search.Encode(tid, sid)
				fmt.Fprintf(cmd.OutOrStdout(), "%d (0x%08x)\n", key, key)
				return nil
			},
		},
		&cobra.Command{
			Use:   "detect",
			Short: "Report the GPU adapter and whether it can run the search grid",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(f)
				if err != nil {
					return err
				}
				out, err := detector.DetectJSON(cfg.PowerPreference)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			},
		},
		&cobra.Command{
			Use:   "kernel",
			Short: "Print the embedded reference kernel",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprint(cmd.OutOrStdout(), kernel.Default().Code)
				return nil
			},
		},
	)
	return root
}

func loadConfig(f *flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if f.backend != "" {
		cfg.Backend = f.backend
	}
	if f.kernelPath != "" {
		cfg.KernelPath = f.kernelPath
	}
	if f.power != "" {
		cfg.PowerPreference = f.power
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.cache {
		cfg.CacheSession = true
	}
	return cfg, cfg.Validate()
}

func parseIDs(args []string) (uint16, uint16, error) {
	tid, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("tid: %w", err)
	}
	sid, err := strconv.ParseUint(args[1], 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("sid: %w", err)
	}
	return uint16(tid), uint16(sid), nil
}

func runSearch(cmd *cobra.Command, f *flags, args []string) error {
	tid, sid, err := parseIDs(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	gen4ids.Initialize(gen4ids.WithConfig(cfg))
	defer gen4ids.ReportPanic()

	s, err := gen4ids.New(cfg, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	// Cancellation is only honoured up to dispatch.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seeds, err := s.Search(ctx, tid, sid)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), seeds)
	return nil
}
