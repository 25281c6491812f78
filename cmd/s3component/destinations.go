package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	s3component "github.com/edgee-cloud/amazon-s3-component"
)

var destinationsCmd = &cobra.Command{
	Use:   "destinations",
	Short: "List configured destinations",
	Long: `List the named destinations loaded from configuration, with the
bucket URL each one writes to. Secrets are never printed.`,
	Args: cobra.NoArgs,
	RunE: runDestinations,
}

func init() {
	rootCmd.AddCommand(destinationsCmd)
}

func runDestinations(cmd *cobra.Command, args []string) error {
	cfg, err := configFromCommand(cmd)
	if err != nil {
		return err
	}

	names := cfg.DestinationNames()
	if len(names) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No destinations configured.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tACCESS KEY\tSESSION TOKEN\tURL")
	for _, name := range names {
		signing, err := s3component.ParseSettings(cfg.Destinations[name])
		if err != nil {
			return fmt.Errorf("destination %q: %w", name, err)
		}
		token := "no"
		if signing.SessionToken.NonEmpty() {
			token = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, signing.AccessKey, token, signing.ObjectURL(""))
	}
	return w.Flush()
}
