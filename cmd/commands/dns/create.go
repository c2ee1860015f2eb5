package dns

import (
	"fmt"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/dnsctl/internal/auditlog"
	dnsdomain "nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/names"
)

// CreateCommand returns the "dns create" subcommand.
func CreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a DNS record",
		Long: `Create a DNS record. Creating a record that already exists with the
same type, name and content succeeds without a change.

Examples:
  dnsctl dns create --type A --name www --content 1.2.3.4
  dnsctl dns create --type MX --content mail.example.com --priority 10
  dnsctl dns create --type TXT --name _acme-challenge.example.com. --content token --ttl 300`,
		Args:         cobra.NoArgs,
		RunE:         runCreate,
		SilenceUsage: true,
	}

	cmd.Flags().String("type", "", "Record type (A, AAAA, CNAME, MX, TXT, etc.) [required]")
	cmd.Flags().String("name", "", "Record name (leave empty for the apex, use * for wildcard)")
	cmd.Flags().String("content", "", "Record content (IP address, hostname, text value, etc.) [required]")
	cmd.Flags().Int("ttl", 0, "Time-to-live in seconds (default: default-ttl, else 600)")
	cmd.Flags().Int("priority", 0, "Record priority (for MX, SRV, etc.)")
	cmd.Flags().String("notes", "", "Optional notes for the record")

	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("content")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	recordType, _ := cmd.Flags().GetString("type")
	name, _ := cmd.Flags().GetString("name")
	content, _ := cmd.Flags().GetString("content")
	ttl, _ := cmd.Flags().GetInt("ttl")
	priority, _ := cmd.Flags().GetInt("priority")
	notes, _ := cmd.Flags().GetString("notes")

	svc, err := newDNSService(cmd)
	if err != nil {
		return err
	}
	full := names.Full(name, svc.Domain())
	cmd.SetContext(auditlog.WithMetadata(cmd.Context(), auditlog.Metadata{
		RecordType: recordType,
		RecordName: full,
	}))

	err = svc.CreateRecord(cmd.Context(), dnsdomain.CreateRecordOpts{
		Name:     name,
		Type:     dnsdomain.RecordType(recordType),
		Content:  content,
		TTL:      ttl,
		Priority: priority,
		Notes:    notes,
	})
	if err != nil {
		return fmt.Errorf("creating record: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created record %s %s -> %s\n", recordType, full, content)
	return nil
}
