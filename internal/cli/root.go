// Package cli implements the blockkit command line: validate, fix and schema.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	bk "github.com/reoring/blockkit"
	"github.com/reoring/blockkit/blocks"
	"github.com/reoring/blockkit/i18n"
	"github.com/reoring/blockkit/internal/config"
)

// Exit codes
const (
	ExitSuccess = 0
	// ExitInvalid means at least one payload is still invalid.
	ExitInvalid = 1
	// ExitUsage covers bad flags, unreadable input and configuration errors.
	ExitUsage = 2
)

// ExitError carries a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitUsage
}

// env is the state shared by subcommands once flags and config are resolved.
type env struct {
	cfg      *config.Configuration
	log      *slog.Logger
	resolver *bk.Resolver
	out      io.Writer
}

func (e *env) context(ctx context.Context) context.Context {
	return bk.WithFailFast(bk.WithLogger(ctx, e.log), e.cfg.FailFast)
}

// NewRootCmd builds the command tree writing results to out and diagnostics
// to errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	var (
		configPath string
		logLevel   string
		language   string
		root       string
	)
	state := &env{out: out}

	cmd := &cobra.Command{
		Use:   "blockkit",
		Short: "Validate and repair Slack Block Kit payloads",
		Long: `blockkit casts Block Kit JSON or YAML payloads into typed documents,
reports every violation with its full path, and can repair payloads with
narrowly scoped fixers (truncation, removal of invalid values, cascading
fixes into nested elements).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}
			flags := cmd.Flags()
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("language") {
				cfg.Language = language
			}
			if flags.Changed("root") {
				cfg.Root = root
			}
			if err := cfg.Validate(); err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}
			i18n.SetLanguage(cfg.Language)
			state.cfg = cfg
			state.log = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: cfg.Level()}))
			state.resolver = resolverFor(cfg.Root)
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	pf := cmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file (default "+config.DefaultFile+" when present)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&language, "language", "", "message language: en or ja")
	pf.StringVar(&root, "root", "", "payload kind: surface (modal, home) or block")

	cmd.AddCommand(newValidateCmd(state), newFixCmd(state), newSchemaCmd(state))
	return cmd
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	cmd := NewRootCmd(out, errOut)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func resolverFor(root string) *bk.Resolver {
	if root == "block" {
		return blocks.Block
	}
	return blocks.Surface
}
