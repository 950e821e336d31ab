package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/mercari-items-client/internal/app"
	"github.com/samvad-hq/mercari-items-client/internal/config"
	"github.com/samvad-hq/mercari-items-client/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "itemsctl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return execute(ctx, os.Stdout, os.Args[1:])
}

// execute runs one command and always releases the store and logger,
// including when the command fails.
func execute(ctx context.Context, out io.Writer, args []string) error {
	root, c := newRootCmd(out)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, c.teardown())
}

// cli carries the runtime shared by every subcommand. It is populated in the
// root command's pre-run hook so flag parsing errors never touch storage,
// and torn down by execute once the command returns.
type cli struct {
	out        io.Writer
	backendURL string
	cfg        *config.Config
	log        logger.Logger
	app        *app.App
}

func newRootCmd(out io.Writer) (*cobra.Command, *cli) {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "itemsctl",
		Short:         "Client for the items marketplace API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
	}
	root.PersistentFlags().StringVar(&c.backendURL, "backend", "", "Items API base URL (overrides BACKEND_URL)")

	root.AddCommand(
		newListCmd(c),
		newImageCmd(c),
		newReleaseCmd(c),
		newCreateCmd(c),
		newSyncCmd(c),
	)
	return root, c
}

func (c *cli) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.backendURL != "" {
		base, err := config.NormalizeBackendURL(c.backendURL)
		if err != nil {
			return err
		}
		cfg.BackendURL = base
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.DebugObj("itemsctl starting", "config", cfg)

	a, err := app.New(cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize app", "error", err)
		return err
	}

	c.cfg = cfg
	c.log = log
	c.app = a
	return nil
}

func (c *cli) teardown() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	_ = logger.Close()
	return err
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
