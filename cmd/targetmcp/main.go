package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"targetmcp/internal/app"
	"targetmcp/internal/buildinfo"
	"targetmcp/internal/domain"
)

type rootOptions struct {
	configPath string
	envFile    string
	sse        *bool
}

type runState struct {
	cfg    domain.Config
	logger *zap.Logger
}

func main() {
	state := &runState{}
	err := newRootCmd(state).Execute()
	if state.logger != nil {
		_ = state.logger.Sync()
	}
	if err == nil {
		return
	}
	if state.logger != nil {
		state.logger.Error("command failed", zap.Error(err))
		_ = state.logger.Sync()
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}

func newRootCmd(state *runState) *cobra.Command {
	opts := rootOptions{}

	root := &cobra.Command{
		Use:           "targetmcp",
		Short:         "MCP server exposing Adobe Target activity tools",
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			applyRootFlagBindings(cmd.Flags(), &opts)
			cfg, err := app.LoadConfig(app.ConfigOptions{
				ConfigFile: opts.configPath,
				EnvFile:    opts.envFile,
				SSE:        opts.sse,
			})
			if err != nil {
				return err
			}
			logger, err := app.NewLogger(cfg.Log.Level)
			if err != nil {
				return err
			}
			state.cfg = cfg
			state.logger = logger
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			application, err := app.InitializeApplication(ctx, state.cfg, state.logger)
			if err != nil {
				return err
			}
			return application.Run(ctx)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config file (yaml, toml or json)")
	flags.StringVar(&opts.envFile, "env-file", "", "dotenv file to load (default .env)")
	flags.Bool("sse", false, "serve over HTTP event streams instead of stdin/stdout")

	root.AddCommand(newValidateCmd(state))
	return root
}

func newValidateCmd(state *runState) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Discover tool modules and print the advertised tool names",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := app.ValidateTools(cmd.Context(), state.cfg, state.logger)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// applyRootFlagBindings records only flags set on the command line so they
// override file and environment values.
func applyRootFlagBindings(flags *pflag.FlagSet, opts *rootOptions) {
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "sse":
			enabled, _ := flags.GetBool("sse")
			opts.sse = &enabled
		}
	})
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
