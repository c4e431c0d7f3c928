package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tapwake/tapwake/internal/scenario"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Database string
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Replay a launch scenario and print its trace",
		Long: `Replay a declarative launch scenario against a fresh context.

The scenario file lists steps - OS signals, gate transitions, pulls -
and the trace records everything observable: classified events, stream
emissions and pull results.

Examples:
  tapwake simulate ./scenarios/cold_start.yaml
  tapwake simulate ./scenarios/cold_start.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: a temp file)")

	return cmd
}

func runSimulate(opts *SimulateOptions, path string, cmd *cobra.Command) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read scenario", err)
	}

	sc, err := scenario.FromYAML(data)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid scenario", err)
	}

	storePath := opts.Database
	if storePath == "" {
		dir, err := os.MkdirTemp("", "tapwake-simulate-*")
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create temp dir", err)
		}
		defer os.RemoveAll(dir)
		storePath = filepath.Join(dir, sc.Name+".db")
	}

	res, err := scenario.Exec(sc, storePath)
	if err != nil {
		return WrapExitError(ExitFailure, "scenario failed", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd, res)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Scenario: %s\n", res.Scenario)
	if opts.Verbose && sc.Description != "" {
		fmt.Fprintf(w, "%s\n", sc.Description)
	}
	for i, ev := range res.Trace {
		fmt.Fprintf(w, "  [%d] %s%s\n", i, ev.Type, formatTraceDetail(ev))
	}
	return nil
}

// formatTraceDetail renders the interesting fields of one trace event.
func formatTraceDetail(ev scenario.TraceEvent) string {
	switch ev.Type {
	case scenario.TraceClassified:
		detail := fmt.Sprintf(" %s payload=%s", ev.Source, ev.Payload)
		if ev.URL != "" {
			detail += " url=" + ev.URL
		}
		if ev.DuringInit {
			detail += " during_init"
		}
		return detail
	case scenario.TracePush, scenario.TracePull:
		return fmt.Sprintf(" payload=%s from_notification=%t", ev.Payload, ev.FromNotification)
	case scenario.TracePushLink, scenario.TracePullLink:
		if ev.URL == "" {
			return " (empty)"
		}
		return " url=" + ev.URL
	case scenario.TraceGate:
		return " " + ev.Gate
	}
	return ""
}
