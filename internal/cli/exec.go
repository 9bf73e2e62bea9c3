package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/bandwire/internal/codec"
	"github.com/roach88/bandwire/internal/exchange"
	"github.com/roach88/bandwire/internal/model"
	"github.com/roach88/bandwire/internal/schema"
	"github.com/roach88/bandwire/internal/transport"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Address  string
	Timeout  time.Duration
	Attempts int
	BandFile string

	// Channel overrides the UDP channel (for testing). It is not closed by exec.
	Channel transport.Channel
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <command> [args...]",
		Short: "Send one command to a bandwire server",
		Long: `Send one command to a bandwire server and print the reply.

Commands that take a band (add, add_if_max, remove_lower, update) read it
from a YAML file given with --band ("-" reads standard input). The file is
checked against the band schema before anything is sent.

The request is resent on timeout, up to --attempts times, waiting --timeout
for each reply.

Example:
  bandwire exec show
  bandwire exec add --band joy-division.yaml
  bandwire exec update 3 --band joy-division.yaml
  bandwire exec filter_contains_name joy --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execCommand(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Address, "addr", "", "server address (overrides client.address)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "wait per attempt (overrides client.timeout)")
	cmd.Flags().IntVar(&opts.Attempts, "attempts", 0, "maximum sends (overrides client.attempts)")
	cmd.Flags().StringVar(&opts.BandFile, "band", "", "YAML band file, or - for stdin")

	return cmd
}

func execCommand(opts *ExecOptions, name string, raw []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, "failed to load configuration", err.Error())
		return markReported(err)
	}
	if opts.Address != "" {
		cfg.Client.Address = opts.Address
	}
	if opts.Timeout != 0 {
		cfg.Client.Timeout = opts.Timeout
	}
	if opts.Attempts != 0 {
		cfg.Client.Attempts = opts.Attempts
	}
	logger := opts.newLogger(cfg, cmd.ErrOrStderr())

	var band *model.Band
	if needsBand(name) && opts.BandFile != "" {
		b, err := readBand(opts.BandFile, cmd.InOrStdin())
		if err != nil {
			_ = formatter.Error(ErrCodeBandFile, "invalid band file", err.Error())
			return markReported(WrapExitError(ExitCommandError, "invalid band file", err))
		}
		band = &b
	}

	args, err := buildArgs(name, raw, band)
	if err != nil {
		_ = formatter.Error(ErrCodeArguments, err.Error(), nil)
		return markReported(WrapExitError(ExitCommandError, "invalid arguments", err))
	}

	ch := opts.Channel
	if ch == nil {
		udp, err := transport.Dial(cfg.Client.Address)
		if err != nil {
			_ = formatter.Error(ErrCodeExchange, "failed to open socket", err.Error())
			return markReported(WrapExitError(ExitCommandError, "failed to open socket", err))
		}
		defer udp.Close()
		ch = udp
	}

	ex, err := exchange.New(ch,
		exchange.WithAttempts(cfg.Client.Attempts),
		exchange.WithTimeout(cfg.Client.Timeout),
		exchange.WithLogger(logger),
	)
	if err != nil {
		_ = formatter.Error(ErrCodeArguments, err.Error(), nil)
		return markReported(WrapExitError(ExitCommandError, "invalid exchange settings", err))
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := codec.NewRequest(name, args...)
	logger.Debug("exchanging", "command", name, "request_id", req.ID, "addr", cfg.Client.Address)
	resp, err := ex.Exchange(ctx, req)
	if err != nil {
		code := ErrCodeExchange
		message := "exchange failed"
		switch {
		case errors.Is(err, exchange.ErrServerUnreachable):
			code, message = ErrCodeUnreachable, "server unreachable"
		case errors.Is(err, exchange.ErrInterrupted):
			message = "interrupted"
		}
		_ = formatter.Error(code, message, err.Error())
		return markReported(WrapExitError(ExitFailure, message, err))
	}

	if err := formatter.Reply(resp); err != nil {
		return WrapExitError(ExitFailure, "failed to print reply", err)
	}
	if !resp.OK() {
		return markReported(NewExitError(ExitFailure, fmt.Sprintf("server replied %s: %s", resp.Status, resp.Message)))
	}
	return nil
}

// readBand loads and schema-checks a band document from path ("-" is stdin).
func readBand(path string, stdin io.Reader) (model.Band, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return model.Band{}, fmt.Errorf("read %s: %w", path, err)
	}

	validator, err := schema.New()
	if err != nil {
		return model.Band{}, err
	}
	return validator.DecodeBand(data)
}
