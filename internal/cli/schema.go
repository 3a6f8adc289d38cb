package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [packages...]",
		Short: "Print OpenAPI component schemas reflecting the resolved tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}

			res, err := runPipeline(cmd.Context(), s, args, true)
			if err != nil {
				return err
			}

			writeDiagnostics(cmd.ErrOrStderr(), res.Plan.Diagnostics)
			if err := diagnosticsError(res.Plan.Diagnostics); err != nil {
				return err
			}

			data, err := res.Schema.MarshalJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
