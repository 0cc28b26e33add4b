package main

import (
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	prodcount "github.com/TyllerAllen/CP431-FinalProject"
)

type config struct {
	workers       int
	chunkSize     int
	codec         string
	memoryLimit   string
	ioLimit       string
	timeout       time.Duration
	channelBuffer int
	logLevel      string
	logFormat     string
	rusage        bool
}

func newRootCmd() *cobra.Command {
	cfg := config{}

	cmd := &cobra.Command{
		Use:           "prodcount [flags] n",
		Short:         "Count the distinct products of the n×n multiplication table",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintf(out, "Invalid arguments, use %s\n", cmd.UseLine())
				return nil
			}
			n, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || n < 1 || n > prodcount.MaxN {
				fmt.Fprintf(out, "Invalid argument %q, use %s\n", args[0], cmd.UseLine())
				return nil
			}

			opts, err := cfg.options()
			if err != nil {
				return err
			}

			res, err := prodcount.Run(cmd.Context(), n, cfg.workers, opts...)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Total: %d\n", res.Distinct)
			fmt.Fprintf(out, "Time elapsed: %.2f seconds\n", res.Elapsed.Seconds())

			if cfg.rusage {
				errOut := cmd.ErrOrStderr()
				fmt.Fprintf(errOut, "Peak reserved: %s\n", humanize.IBytes(uint64(res.PeakMemory)))
				if rss, ok := peakRSS(); ok {
					fmt.Fprintf(errOut, "Peak RSS: %s\n", humanize.IBytes(rss))
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&cfg.workers, "workers", "p", runtime.NumCPU(), "number of ranks")
	f.IntVarP(&cfg.chunkSize, "chunk-size", "c", prodcount.DefaultChunkSize, "bytes per transport chunk")
	f.StringVar(&cfg.codec, "codec", string(prodcount.CodecRaw), "chunk codec: raw, lz4, zstd or roaring")
	f.StringVar(&cfg.memoryLimit, "memory-limit", "0", "cap on reserved bitmap memory, e.g. 2GiB (0 = unlimited)")
	f.StringVar(&cfg.ioLimit, "io-limit", "0", "total send rate in bytes/s, e.g. 100MB (0 = unlimited)")
	f.DurationVar(&cfg.timeout, "timeout", 0, "abort the run after this duration (0 = never)")
	f.IntVar(&cfg.channelBuffer, "channel-buffer", 0, "in-flight chunks per rank pair")
	f.StringVar(&cfg.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	f.StringVar(&cfg.logFormat, "log-format", "text", "log format: text or json")
	f.BoolVar(&cfg.rusage, "rusage", false, "report peak memory on stderr")

	return cmd
}

func (c config) options() ([]prodcount.Option, error) {
	memLimit, err := parseBytes("memory-limit", c.memoryLimit)
	if err != nil {
		return nil, err
	}
	ioLimit, err := parseBytes("io-limit", c.ioLimit)
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", c.logLevel, err)
	}

	var logger *prodcount.Logger
	switch strings.ToLower(c.logFormat) {
	case "text":
		logger = prodcount.NewTextLogger(level)
	case "json":
		logger = prodcount.NewJSONLogger(level)
	default:
		return nil, fmt.Errorf("invalid --log-format %q", c.logFormat)
	}

	return []prodcount.Option{
		prodcount.WithChunkSize(c.chunkSize),
		prodcount.WithCodec(prodcount.Codec(strings.ToLower(c.codec))),
		prodcount.WithMemoryLimit(memLimit),
		prodcount.WithIOLimit(ioLimit),
		prodcount.WithTimeout(c.timeout),
		prodcount.WithChannelBuffer(c.channelBuffer),
		prodcount.WithLogger(logger),
	}, nil
}

func parseBytes(flag, s string) (int64, error) {
	v, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s %q: %w", flag, s, err)
	}
	if v > 1<<62 {
		return 0, fmt.Errorf("invalid --%s %q: too large", flag, s)
	}
	return int64(v), nil
}
