package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tapwake/tapwake"
)

// ParseResult is the output of the parse command.
type ParseResult struct {
	URL    string            `json:"url"`
	Path   string            `json:"path"`
	Params map[string]string `json:"params,omitempty"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <url>",
		Short: "Map a deep link URL onto its canonical route",
		Long: `Map a raw deep link URL onto a canonical route.

The route is a "/"-prefixed path that never contains a URI scheme
separator, plus the URL's query parameters.

Examples:
  tapwake parse "myapp://product/123?ref=mail"
  tapwake parse "https://example.com/promo" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runParse(opts *RootOptions, raw string, cmd *cobra.Command) error {
	route := tapwake.ParseDeepLink(raw)
	result := ParseResult{URL: raw, Path: route.Path, Params: route.Params}

	if opts.Format == "json" {
		return writeJSON(cmd, result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Path: %s\n", result.Path)
	if len(result.Params) > 0 {
		keys := make([]string, 0, len(result.Params))
		for k := range result.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(w, "Params:")
		for _, k := range keys {
			fmt.Fprintf(w, "  %s = %s\n", k, result.Params[k])
		}
	}
	return nil
}
