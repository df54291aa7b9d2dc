package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var versionsJSON bool

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Manage index versions",
	Long: `Lists and manages the collection versions of the configured namespace.
Without a subcommand the versions are listed.`,
	RunE: runVersionsList,
}

var versionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all versions",
	RunE:  runVersionsList,
}

var versionsCreateCmd = &cobra.Command{
	Use:   "create [id]",
	Short: "Create an empty version",
	Long:  `Creates an empty version in the building state. Without an id a timestamp name is generated.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runVersionsCreate,
}

var versionsPromoteCmd = &cobra.Command{
	Use:   "promote <id>",
	Short: "Make a version active",
	Long: `Makes the version active. Empty or missing versions are refused and the
current active version is left in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runVersionsPromote,
}

var versionsRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Re-activate the most recently retired version",
	RunE:  runVersionsRollback,
}

var versionsActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "Print the active version",
	RunE:  runVersionsActive,
}

func init() {
	versionsCmd.PersistentFlags().BoolVar(&versionsJSON, "json", false, "output as JSON")
	versionsCmd.AddCommand(versionsListCmd)
	versionsCmd.AddCommand(versionsCreateCmd)
	versionsCmd.AddCommand(versionsPromoteCmd)
	versionsCmd.AddCommand(versionsRollbackCmd)
	versionsCmd.AddCommand(versionsActiveCmd)
	rootCmd.AddCommand(versionsCmd)
}

func runVersionsList(cmd *cobra.Command, _ []string) error {
	if versionService == nil {
		return errNotConfigured("version")
	}

	versions, err := versionService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list versions: %w", err)
	}

	if versionsJSON {
		return printJSON(cmd, versions)
	}

	if len(versions) == 0 {
		cmd.Printf("No versions in namespace %q.\n", versionService.Namespace())
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATE\tENTRIES\tCREATED\tPROMOTED")
	for _, v := range versions {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			v.Name, v.State, v.EntryCount, formatTime(&v.CreatedAt), formatTime(v.PromotedAt))
	}
	return w.Flush()
}

func runVersionsCreate(cmd *cobra.Command, args []string) error {
	if versionService == nil {
		return errNotConfigured("version")
	}

	var id string
	if len(args) > 0 {
		id = args[0]
	}
	v, err := versionService.CreateVersion(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("create version: %w", err)
	}

	if versionsJSON {
		return printJSON(cmd, v)
	}
	cmd.Printf("Created %s\n", v.Name)
	return nil
}

func runVersionsPromote(cmd *cobra.Command, args []string) error {
	if versionService == nil {
		return errNotConfigured("version")
	}

	if _, err := versionService.Promote(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("promote %s: %w", args[0], err)
	}
	cmd.Printf("Active version: %s\n", versionService.Active())
	return nil
}

func runVersionsRollback(cmd *cobra.Command, _ []string) error {
	if versionService == nil {
		return errNotConfigured("version")
	}

	v, err := versionService.Rollback(cmd.Context())
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	cmd.Printf("Rolled back to %s\n", v.Name)
	return nil
}

func runVersionsActive(cmd *cobra.Command, _ []string) error {
	if versionService == nil {
		return errNotConfigured("version")
	}

	active := versionService.Active()
	if active == "" {
		cmd.Println("No active version.")
		return nil
	}
	cmd.Println(active)
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

