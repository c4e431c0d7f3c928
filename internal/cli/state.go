package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tapwake/tapwake/internal/store"
)

// StateOptions holds flags for the state command.
type StateOptions struct {
	*RootOptions
	Database string
}

// StateResult is the output of the state command.
type StateResult struct {
	HasEvent   bool   `json:"has_event"`
	Source     string `json:"source,omitempty"`
	Payload    string `json:"payload,omitempty"`
	URL        string `json:"url,omitempty"`
	EventID    string `json:"event_id,omitempty"`
	HasPending bool   `json:"has_pending"`
	Pending    string `json:"pending,omitempty"`
}

// NewStateCommand creates the state command.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect the stored launch trigger without clearing it",
		Long: `Show the stored launch trigger and any pre-registered payload.

Unlike consume, this is non-destructive: a later pull still observes
the event.

Examples:
  tapwake state --db ./tapwake.db
  tapwake state --db ./tapwake.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runState(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runState(opts *StateOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	snap, err := st.Peek(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read launch state", err)
	}

	result := StateResult{
		HasEvent:   snap.HasEvent,
		Source:     snap.Source,
		Payload:    snap.Payload,
		URL:        snap.RawURL,
		EventID:    snap.EventID,
		HasPending: snap.HasPending,
		Pending:    snap.Pending,
	}

	if opts.Format == "json" {
		return writeJSON(cmd, result)
	}

	w := cmd.OutOrStdout()
	if !result.HasEvent {
		fmt.Fprintln(w, "No stored launch trigger.")
	} else {
		fmt.Fprintf(w, "Source:  %s\n", result.Source)
		if result.URL != "" {
			fmt.Fprintf(w, "URL:     %s\n", result.URL)
		}
		fmt.Fprintf(w, "Payload: %s\n", result.Payload)
		if opts.Verbose {
			fmt.Fprintf(w, "Event:   %s\n", result.EventID)
		}
	}
	if result.HasPending {
		fmt.Fprintf(w, "Pending: %s\n", result.Pending)
	}
	return nil
}
