package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/samvad-hq/overpass-harvester/internal/config"
	"github.com/samvad-hq/overpass-harvester/internal/logger"
	"github.com/samvad-hq/overpass-harvester/pkg/overpass"
	"github.com/spf13/cobra"
)

type options struct {
	overpassURI string
	status      bool
	wait        bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "overpass-query [--status] [--wait] <query-file>",
		Short: "Run an Overpass query and print the raw result",
		Long: `Posts the query in <query-file> to the Overpass interpreter and writes the
result to stdout. Nothing is written to stdout when the query fails.`,
		Args:          validateArgs(opts),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runQuery(cmd.Context(), opts, args, stdout, stderr)
			if err != nil {
				fmt.Fprintf(stderr, "overpass query failed: %v\n", err)
			}
			return err
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().StringVar(&opts.overpassURI, "overpass-uri", "", "Overpass base URL (defaults to OVERPASS_URI / config)")
	cmd.Flags().BoolVar(&opts.status, "status", false, "print the seconds to wait before the next query and exit")
	cmd.Flags().BoolVar(&opts.wait, "wait", false, "wait for a free slot before querying")
	return cmd
}

func validateArgs(opts *options) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		check := cobra.ExactArgs(1)
		if opts.status {
			check = cobra.NoArgs
		}
		if err := check(cmd, args); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%v\n%s", err, cmd.UsageString())
			return err
		}
		return nil
	}
}

func runQuery(ctx context.Context, opts *options, args []string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	base := cfg.OverpassURI()
	if uri := strings.TrimSpace(opts.overpassURI); uri != "" {
		base = strings.TrimRight(uri, "/")
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	client := overpass.DefaultClient(cfg.HTTPTimeout, log)

	if opts.status {
		fmt.Fprintln(stdout, client.NeedSleep(ctx, base))
		return nil
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read query: %w", err)
	}

	if opts.wait {
		if wait := client.NeedSleep(ctx, base); wait > 0 {
			fmt.Fprintf(stderr, "waiting %d seconds for a free overpass slot\n", wait)
			timer := time.NewTimer(time.Duration(wait) * time.Second)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	result, err := client.Query(ctx, base, string(raw))
	if err != nil {
		return err
	}
	_, err = io.WriteString(stdout, result)
	return err
}
