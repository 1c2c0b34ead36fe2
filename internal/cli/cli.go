package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vk/taskgridgo/internal/app"
	"github.com/vk/taskgridgo/internal/config"
	"github.com/vk/taskgridgo/internal/session"
)

const version = "0.1.0"

// rootFlags are the persistent flags shared by every subcommand. File
// and environment settings are resolved first; a changed flag wins.
type rootFlags struct {
	configPath      string
	strategy        string
	agents          int
	capabilityName  string
	logFormat       string
	logLevel        string
	healthcheckPort int
	natsURL         string
	noGates         bool
}

// Root builds the taskgrid command tree. Output (logs and the final
// report) goes to outW so tests can capture it.
func Root(outW io.Writer) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "taskgrid",
		Short: "Stateless parallel task execution engine",
		Long: `Taskgrid compiles a batch of task specs into a layered execution
plan and runs it: dependency-ordered layers, bounded concurrency
within a layer, quality gates on every artifact, and retry with
exponential backoff on transient failures.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to an HCL config file.")
	pf.StringVar(&flags.strategy, "strategy", "", "Execution strategy preset: aggressive, conservative, hybrid or sequential.")
	pf.IntVar(&flags.agents, "agents", 0, "Maximum concurrently executing tasks.")
	pf.StringVar(&flags.capabilityName, "capability", "", "Executor capability to run tasks with.")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log output format: 'text' or 'json'.")
	pf.StringVar(&flags.logLevel, "log-level", "", "Logging level: 'debug', 'info', 'warn' or 'error'.")
	pf.IntVar(&flags.healthcheckPort, "healthcheck-port", 0, "Port for the status HTTP server. 0 is disabled.")
	pf.StringVar(&flags.natsURL, "nats-url", "", "NATS server URL for the progress sink.")
	pf.BoolVar(&flags.noGates, "no-gates", false, "Skip quality gate validation.")

	cmd.AddCommand(runCmd(outW, flags))
	cmd.AddCommand(compileCmd(outW, flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taskgrid version %s\n", version)
		},
	})

	return cmd
}

func runCmd(outW io.Writer, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <tasks-file>",
		Short: "Compile and execute a task batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, outW, cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			report, err := a.Run(ctx, args[0])
			if err != nil {
				return err
			}
			if report.State != session.StateCompleted {
				return fmt.Errorf("session %s ended %s", report.SessionID, report.State)
			}
			return nil
		},
	}
}

func compileCmd(outW io.Writer, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <tasks-file>",
		Short: "Validate a task batch and print its execution plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), outW, cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			plan, err := a.Compile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for i, layer := range plan.Layers {
				fmt.Fprintf(outW, "layer %d: %v\n", i, []string(layer))
			}
			return nil
		},
	}
}

// buildApp resolves the effective configuration and constructs the app.
func buildApp(ctx context.Context, outW io.Writer, cmd *cobra.Command, flags *rootFlags) (*app.App, error) {
	cfg, err := config.Load(ctx, flags.configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("strategy") {
		if err := cfg.ApplyStrategy(config.Strategy(flags.strategy)); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("agents") {
		cfg.MaxParallelAgents = flags.agents
	}
	if cmd.Flags().Changed("capability") {
		cfg.Capability = flags.capabilityName
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = flags.logFormat
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if cmd.Flags().Changed("healthcheck-port") {
		cfg.HealthcheckPort = flags.healthcheckPort
	}
	if cmd.Flags().Changed("nats-url") {
		cfg.NATSURL = flags.natsURL
	}
	if flags.noGates {
		cfg.QualityGatesEnabled = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return app.NewApp(ctx, outW, &cfg)
}
