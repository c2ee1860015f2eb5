package audit

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/dnsctl/internal/auditlog"
)

func PruneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete audit entries older than a duration",
		Long: `Delete audit entries older than a duration.

Durations accept Go syntax (72h, 90m) plus whole days (30d) and weeks (2w).

Examples:
  dnsctl audit prune --older-than 30d
  dnsctl audit prune --older-than 2w --dry-run`,
		RunE:         runPrune,
		SilenceUsage: true,
	}

	cmd.Flags().String("older-than", "", "Remove entries older than this duration (e.g. 30d, 2w, 72h)")
	cmd.Flags().Bool("dry-run", false, "Report how many entries would be removed without deleting them")
	_ = cmd.MarkFlagRequired("older-than")

	return cmd
}

func runPrune(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetString("older-than")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	olderThan, err := parseDuration(strings.TrimSpace(raw))
	if err != nil {
		return err
	}

	repo, err := auditlog.Open()
	if err != nil {
		return err
	}
	defer repo.Close()

	if dryRun {
		n, err := repo.CountOlderThan(olderThan)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Would remove %d audit %s.\n", n, entries(n))
		return nil
	}

	removed, err := repo.Prune(olderThan)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d audit %s.\n", removed, entries(removed))
	return nil
}

func entries(n int64) string {
	if n == 1 {
		return "entry"
	}
	return "entries"
}

var dayUnits = map[string]time.Duration{
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

func parseDuration(input string) (time.Duration, error) {
	if input == "" {
		return 0, fmt.Errorf("--older-than must not be empty")
	}

	var d time.Duration
	unit, ok := dayUnits[input[len(input)-1:]]
	if ok {
		n, err := strconv.Atoi(input[:len(input)-1])
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", input)
		}
		d = time.Duration(n) * unit
	} else {
		var err error
		if d, err = time.ParseDuration(input); err != nil {
			return 0, fmt.Errorf("invalid duration %q", input)
		}
	}

	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", input)
	}
	return d, nil
}
