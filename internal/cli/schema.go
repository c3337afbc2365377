package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driftsync/driftsync/internal/repoconfig"
)

// NewSchemaCommand creates the schema command, which prints the JSON Schema
// repository sync files are validated against.
func NewSchemaCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for repository sync files",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := repoconfig.Schema()
			if err != nil {
				return err
			}
			if output != "" {
				return os.WriteFile(output, data, 0644)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the schema to a file instead of stdout")

	return cmd
}
