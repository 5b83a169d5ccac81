package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/docarc/docarc/internal/archive"
)

// archiveListing is the JSON shape for one listed archive.
type archiveListing struct {
	Name          string `json:"name"`
	DisplayName   string `json:"display_name"`
	Identifier    string `json:"identifier,omitempty"`
	Path          string `json:"path,omitempty"`
	DocumentCount int    `json:"document_count"`
}

func newListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered documentation archives",
		Long: `List every *.docarchive bundle found in the configured search roots,
with document counts. Archive names are the handles the other commands
and MCP tools accept.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, cleanup := setupLogging(cfg, false)
			defer cleanup()

			caches, err := archive.NewCaches(cfg.Cache.ArchiveEntries, cfg.Cache.DocumentEntries)
			if err != nil {
				return err
			}
			locator := archive.NewLocator(cfg.Archives.Roots, caches, nil)

			records, err := locator.List(cmd.Context())
			if err != nil {
				return err
			}

			if format == "json" {
				listings := make([]archiveListing, 0, len(records))
				for _, rec := range records {
					listings = append(listings, archiveListing{
						Name:          rec.Name,
						DisplayName:   rec.DisplayName,
						Identifier:    rec.BundleIdentifier,
						Path:          rec.Path,
						DocumentCount: rec.DocumentCount(),
					})
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(listings)
			}

			if len(records) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No archives found.")
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDISPLAY NAME\tDOCUMENTS")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%d\n", rec.Name, rec.DisplayName, rec.DocumentCount())
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}
