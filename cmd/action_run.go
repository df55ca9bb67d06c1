package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/spf13/cobra"

	"github.com/278261631/t-gui/internal/host"
)

// maxSuggestDistance caps how far an id can be from the input and still be
// offered as a suggestion.
const maxSuggestDistance = 5

var actionRunCmd = &cobra.Command{
	Use:   "action:run <action-id>",
	Short: "Execute a registered action",
	Long: `Start the host, load plugins per config, and execute the named action.
Arguments after the action id are passed through to the action callback.

Examples:
  t-gui action:run sample.hello
  t-gui action:run io.open -- /path/to/file`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if cleanup, err := initLogging(); err != nil {
			return err
		} else if cleanup != nil {
			defer cleanup()
		}

		runCfg := cfg
		runCfg.Plugins.AutoDiscover = true
		runCfg.Plugins.AutoLoad = true

		h, err := host.New(runCfg)
		if err != nil {
			return fmt.Errorf("starting host: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = h.Close(ctx)
		}()

		id := args[0]
		if _, ok := h.Actions.Get(id); !ok {
			var ids []string
			for _, a := range h.Actions.All() {
				ids = append(ids, a.ID)
			}
			if suggestion := closestMatch(id, ids); suggestion != "" {
				return fmt.Errorf("unknown action %q (did you mean %q?)", id, suggestion)
			}
			return fmt.Errorf("unknown action %q", id)
		}

		callArgs := make([]any, 0, len(args)-1)
		for _, a := range args[1:] {
			callArgs = append(callArgs, a)
		}

		if err := h.Actions.Execute(id, callArgs...); err != nil {
			return err
		}
		fmt.Printf("action %s executed\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(actionRunCmd)
}

// closestMatch returns the candidate with the smallest edit distance to
// input, or empty string when none is close enough to be a plausible typo.
func closestMatch(input string, candidates []string) string {
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(input, c)
		if d < bestDist {
			best = c
			bestDist = d
		}
	}
	if bestDist > maxSuggestDistance {
		return ""
	}
	return best
}
