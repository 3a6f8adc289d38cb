package cli

import (
	"github.com/spf13/cobra"
)

type checkOptions struct {
	Format string
	All    bool
}

func newCheckCommand() *cobra.Command {
	opts := checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [packages...]",
		Short: "Resolve markers and report the planned tags without writing",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}

			res, err := runPipeline(cmd.Context(), s, args, false)
			if err != nil {
				return err
			}

			if err := writePlan(cmd.OutOrStdout(), res.Plan, opts.Format, opts.All); err != nil {
				return err
			}
			writeDiagnostics(cmd.ErrOrStderr(), res.Plan.Diagnostics)

			return diagnosticsError(res.Plan.Diagnostics)
		},
	}
	cmd.Flags().StringVar(&opts.Format, "format", formatTable, "Output format: table, yaml or json")
	cmd.Flags().BoolVar(&opts.All, "all", false, "List fields without markers too")
	return cmd
}
