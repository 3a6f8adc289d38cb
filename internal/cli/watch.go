package cli

import (
	"context"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"option-tagger/internal/analyze"
	"option-tagger/internal/watch"
)

func newWatchCommand() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch [packages...]",
		Short: "Rewrite tags again whenever the packages change",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}

			graph, err := analyze.NewAnalyzer().LoadPackages(defaultPatterns(args)...)
			if err != nil {
				return errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("failed to load packages").
					WithCause(err)
			}

			run := func(ctx context.Context) ([]string, error) {
				return rewriteOnce(ctx, s, args, rewriteOptions{}, io.Discard, cmd.ErrOrStderr())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return watch.New(sourceDirs(graph), run, debounce, log.Logger).Run(ctx)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before a batch of changes is handled")
	return cmd
}
