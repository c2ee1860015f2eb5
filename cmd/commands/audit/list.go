package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nathanbeddoewebdev/dnsctl/internal/auditlog"
	"nathanbeddoewebdev/dnsctl/internal/tui"
)

var listHeaders = []string{"TIME", "COMMAND", "OUTCOME", "ERROR", "DURATION", "TARGET", "RECORD", "DETAIL"}

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent audit entries",
		Long: `List the most recent dnsctl invocations recorded on this machine,
newest first. Filter by exact command path or by domain.

Examples:
  dnsctl audit list
  dnsctl audit list --limit 50
  dnsctl audit list --command "dnsctl dns create"
  dnsctl audit list --domain example.com -o json`,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 25, "Number of entries to display")
	cmd.Flags().String("command", "", "Filter by exact command path")
	cmd.Flags().String("domain", "", "Filter by domain")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")
	cmd.MarkFlagsMutuallyExclusive("command", "domain")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}
	output, _ := cmd.Flags().GetString("output")
	if output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q", output)
	}
	command, _ := cmd.Flags().GetString("command")
	domainName, _ := cmd.Flags().GetString("domain")

	repo, err := auditlog.Open()
	if err != nil {
		return err
	}
	defer repo.Close()

	var entries []auditlog.AuditEntry
	switch {
	case command != "":
		entries, err = repo.ListByCommand(command, limit)
	case domainName != "":
		entries, err = repo.ListByDomain(domainName, limit)
	default:
		entries, err = repo.List(limit)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if output == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No audit entries found.")
		return nil
	}

	rows := make([][]string, len(entries))
	for i, entry := range entries {
		rows[i] = listRow(entry)
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(out, tui.Table(listHeaders, rows, 2))
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(listHeaders, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func listRow(entry auditlog.AuditEntry) []string {
	return []string{
		entry.Timestamp.Local().Format(time.DateTime),
		entry.Command,
		entry.Outcome,
		dash(entry.ErrorKind),
		formatDuration(entry.DurationMs),
		formatTarget(entry),
		formatRecord(entry),
		dash(entry.Detail),
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatDuration keeps one unit: 850ms, 2.5s, 3m, 1h.
func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", ms)
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

// formatTarget renders "provider/domain", or whichever half is known.
func formatTarget(entry auditlog.AuditEntry) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{entry.Provider, entry.Domain} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return dash(strings.Join(parts, "/"))
}

// formatRecord renders "TYPE name (id)", omitting unknown parts.
func formatRecord(entry auditlog.AuditEntry) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{entry.RecordType, entry.RecordName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if entry.RecordID != "" {
		if len(parts) == 0 {
			parts = append(parts, entry.RecordID)
		} else {
			parts = append(parts, "("+entry.RecordID+")")
		}
	}
	return dash(strings.Join(parts, " "))
}
