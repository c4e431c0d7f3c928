package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tapwake/tapwake/internal/store"
)

// ConsumeOptions holds flags for the consume command.
type ConsumeOptions struct {
	*RootOptions
	Database string
	Link     bool
	Strict   bool
}

// ConsumeResult is the output of the consume command.
type ConsumeResult struct {
	IsFromNotification bool   `json:"isFromNotification,omitempty"`
	Payload            string `json:"payload,omitempty"`
	URL                string `json:"url,omitempty"`
	Empty              bool   `json:"empty"`
}

// NewConsumeCommand creates the consume command.
func NewConsumeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConsumeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Pull and clear the stored launch trigger",
		Long: `Pull the stored launch trigger out of a database, clearing it.

By default the notification slot is pulled; --link pulls the
cold-launch deep link instead. Pulling is read-and-clear: a second
consume observes an empty slot.

Examples:
  tapwake consume --db ./tapwake.db
  tapwake consume --db ./tapwake.db --link
  tapwake consume --db ./tapwake.db --strict --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsume(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().BoolVar(&opts.Link, "link", false, "pull the deep link slot instead of the notification slot")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit nonzero when the slot is empty")

	return cmd
}

func runConsume(opts *ConsumeOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var result ConsumeResult
	if opts.Link {
		url, err := st.ConsumeLink(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to consume link", err)
		}
		result = ConsumeResult{URL: url, Empty: url == ""}
	} else {
		state, err := st.ConsumeState(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to consume launch state", err)
		}
		result = ConsumeResult{
			IsFromNotification: state.IsFromNotification,
			Payload:            state.Payload,
			Empty:              !state.IsFromNotification,
		}
	}

	if result.Empty && opts.Strict {
		return WrapExitError(ExitFailure, "nothing to consume", nil)
	}

	if opts.Format == "json" {
		return writeJSON(cmd, result)
	}

	w := cmd.OutOrStdout()
	switch {
	case opts.Link && result.Empty:
		fmt.Fprintln(w, "No pending deep link.")
	case opts.Link:
		fmt.Fprintf(w, "Deep link: %s\n", result.URL)
	case result.Empty:
		fmt.Fprintln(w, "No pending notification launch.")
	default:
		fmt.Fprintf(w, "From notification: true\nPayload: %s\n", result.Payload)
	}
	return nil
}
