package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"option-tagger/internal/gen"
)

type rewriteOptions struct {
	DryRun    bool
	OutputDir string
}

func newRewriteCommand() *cobra.Command {
	opts := rewriteOptions{}
	cmd := &cobra.Command{
		Use:   "rewrite [packages...]",
		Short: "Rewrite directive tags of annotated fields in place",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}

			_, err = rewriteOnce(cmd.Context(), s, args, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print rewritten files instead of writing them")
	cmd.Flags().StringVar(&opts.OutputDir, "out", "", "Write rewritten files under this directory instead of in place")
	return cmd
}

// rewriteOnce runs the pipeline and writes the result. It returns the paths
// written, which is empty on a dry run.
func rewriteOnce(
	ctx context.Context,
	s settings,
	patterns []string,
	opts rewriteOptions,
	stdout, stderr io.Writer,
) ([]string, error) {
	res, err := runPipeline(ctx, s, patterns, s.SchemaOut != "")
	if err != nil {
		return nil, err
	}

	writeDiagnostics(stderr, res.Plan.Diagnostics)
	if err := diagnosticsError(res.Plan.Diagnostics); err != nil {
		return nil, err
	}

	files, diags, err := gen.NewRewriter(s.rewriterConfig()).Rewrite(res.Plan)
	if diags != nil {
		writeDiagnostics(stderr, *diags)
	}
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		for _, f := range files {
			fmt.Fprintf(stdout, "// %s\n%s\n", f.Path, f.Content)
		}
		return nil, nil
	}

	written, err := gen.WriteFiles(files, opts.OutputDir)
	if err != nil {
		return written, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write rewritten files").
			WithCause(err)
	}

	if s.SchemaOut != "" {
		data, err := res.Schema.MarshalJSON()
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(s.SchemaOut, append(data, '\n'), 0o644); err != nil {
			return written, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to write schema " + s.SchemaOut).
				WithCause(err)
		}
		written = append(written, s.SchemaOut)
	}

	log.Info().
		Int("files", len(files)).
		Int("fields", len(res.Plan.Changed())).
		Msg("rewrite complete")

	return written, nil
}
