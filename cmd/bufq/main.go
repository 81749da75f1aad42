// Command bufq buffers messages and ships them to a batch-oriented queue
// service. Messages are read as newline-delimited bodies from stdin, or as
// files dropped into a spool directory with --spool-dir.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bufq/bufq/internal/cliconfig"
	"github.com/bufq/bufq/internal/source"
	"github.com/bufq/bufq/pkg/bufq"
	"github.com/bufq/bufq/pkg/log"
)

const helpDescription = `
Buffer messages client-side and ship them to a batch queue service.

Highlights:
  - Packs messages into batches of at most 10 entries / 256KiB automatically.
  - Retries partial batch failures, resubmitting only the rejected entries.
  - Reads newline-delimited bodies from stdin, or files from a spool directory.
  - Configure via file (~/.bufq/config.toml), BUFQ_* env vars, or flags.
`

var exampleUsage = strings.TrimSpace(`
  tail -f events.log | bufq --queue-url orders --service-url https://queue.example.com --auth-key <key>
  bufq --spool-dir /var/spool/bufq --queue-url orders --group-size 10
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "bufq",
		Short:         "Buffer messages and ship them to a batch queue service",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first, then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			return run(cmd.Context(), cfg)
		},
	}

	flags := root.Flags()
	flags.StringVar(&cfgPath, "config", "", "path to TOML config file (default ~/.bufq/config.toml)")
	flags.StringVar(&cfg.QueueURL, "queue-url", cfg.QueueURL, "target queue identifier (required)")
	flags.StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "base URL of the queue service (required)")
	flags.StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "API authentication key")
	flags.StringVar(&cfg.SpoolDir, "spool-dir", cfg.SpoolDir, "watch this directory and send each file as one message")
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "maximum concurrent batch sends")
	flags.IntVar(&cfg.RetryLimit, "retry-limit", cfg.RetryLimit, "additional send attempts before a failure is terminal")
	flags.DurationVar(&cfg.RetryDelay, "retry-delay", cfg.RetryDelay, "initial delay between retry attempts")
	flags.IntVar(&cfg.BufferCapacity, "buffer-capacity", cfg.BufferCapacity, "bound the pending queue (0 = unbounded)")
	flags.IntVar(&cfg.GroupSize, "group-size", cfg.GroupSize, "aggregate this many bodies into one envelope entry (0 = off)")
	flags.DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "per-request HTTP timeout")
	flags.DurationVar(&cfg.FlushTimeout, "flush-timeout", cfg.FlushTimeout, "how long the final flush may take")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable debug logging")

	return root
}

func run(ctx context.Context, cfg cliconfig.Config) error {
	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	zlog := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).Level(level).With().Timestamp().Logger()
	logger := log.NewZerologLogger(zlog)

	client, err := bufq.New(bufq.Config{
		QueueURL:             cfg.QueueURL,
		ServiceURL:           cfg.ServiceURL,
		AuthKey:              cfg.AuthKey,
		WorkerCount:          cfg.Workers,
		RetryLimit:           cfg.RetryLimit,
		RetryDelay:           cfg.RetryDelay,
		BufferCapacity:       cfg.BufferCapacity,
		AggregationGroupSize: cfg.GroupSize,
		HTTPTimeout:          cfg.HTTPTimeout,
	}, bufq.WithLogger(logger))
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SpoolDir != "" {
		err = runSpool(runCtx, cfg.SpoolDir, client, logger)
	} else {
		err = runStdin(runCtx, client, logger)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	// Final drain: surface everything that failed terminally.
	logger.Info("flushing buffered messages",
		log.Int("pending", client.Pending()),
		log.Int("outstanding", client.Outstanding()))
	if err := client.Flush(context.Background(), cfg.FlushTimeout); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	logger.Info("drained")
	return nil
}

// runStdin buffers each stdin line as one message body until EOF or signal.
func runStdin(ctx context.Context, client *bufq.Client, logger log.Logger) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	count := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := client.Send(ctx, bufq.Message{Body: line}); err != nil {
			return err
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	logger.Info("stdin closed", log.Int("messages", count))
	return nil
}

// runSpool watches a spool directory until signalled.
func runSpool(ctx context.Context, dir string, client *bufq.Client, logger log.Logger) error {
	logger.Info("watching spool directory", log.String("dir", dir))
	return source.NewDirSource(dir, client, logger).Run(ctx)
}
