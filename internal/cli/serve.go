package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/bandwire/internal/collection"
	"github.com/roach88/bandwire/internal/command"
	"github.com/roach88/bandwire/internal/command/bands"
	"github.com/roach88/bandwire/internal/server"
	"github.com/roach88/bandwire/internal/store"
	"github.com/roach88/bandwire/internal/transport"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Address  string
	Database string

	// OnListen is called with the bound address once the socket is open (for testing).
	OnListen func(addr net.Addr)
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the band collection over UDP",
		Long: `Serve the band collection over UDP.

The server owns one ordered collection of bands and answers command requests,
one datagram per request. With --db (or store.path) the collection and its id
counter are kept in a SQLite file and restored on start.

Example:
  bandwire serve --addr 127.0.0.1:7070
  bandwire serve --db ./bands.db --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Address, "addr", "", "UDP address to listen on (overrides server.address)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides store.path)")

	return cmd
}

func runServer(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if opts.Address != "" {
		cfg.Server.Address = opts.Address
	}
	if opts.Database != "" {
		cfg.Store.Path = opts.Database
	}

	logger := opts.newLogger(cfg, cmd.ErrOrStderr())

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	managerOpts := []collection.Option{collection.WithLogger(logger)}
	var snap collection.Snapshot
	var restore bool
	if cfg.Store.Path != "" {
		logger.Info("opening database", "path", cfg.Store.Path)
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()

		snap, restore, err = st.Load(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load collection", err)
		}
		managerOpts = append(managerOpts, collection.WithPersister(st))
	}

	manager := collection.NewManager(managerOpts...)
	if restore {
		if err := manager.Restore(snap); err != nil {
			return WrapExitError(ExitCommandError, "failed to restore collection", err)
		}
		logger.Info("collection restored", "bands", manager.Len(), "last_id", snap.LastID)
	}

	registry := command.NewRegistry(command.NewHistory(command.DefaultHistorySize), logger)
	if err := bands.Register(registry, manager); err != nil {
		return WrapExitError(ExitFailure, "failed to register commands", err)
	}
	registry.Seal()

	listener, err := transport.Listen(cfg.Server.Address)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}
	defer listener.Close()

	srv, err := server.New(listener, registry, server.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitFailure, "failed to create server", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d band(s) on %s. Press Ctrl-C to stop.\n", manager.Len(), listener.Addr())
	if opts.OnListen != nil {
		opts.OnListen(listener.Addr())
	}

	if err := srv.Run(ctx); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}

	logger.Info("server stopped gracefully", slog.Int("bands", manager.Len()))
	return nil
}
