package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/skillmapper-backend/internal/app"
	"github.com/yungbote/skillmapper-backend/internal/services"
)

type roadmapOpts struct {
	career      string
	difficulty  string
	suggestions bool
}

func newRoadmapCmd() *cobra.Command {
	var opts roadmapOpts
	cmd := &cobra.Command{
		Use:   "roadmap",
		Short: "Generate one roadmap and print it as JSON",
		Long: `Runs the resource pipeline once (prompt, completion, parse, link check)
and prints the same JSON the /api/resources endpoint returns.
With --suggestions it prints the /api/suggestions payload instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(opts.career) == "" || strings.TrimSpace(opts.difficulty) == "" {
				return errors.New("--career and --difficulty are required")
			}
			log, cfg, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			pipeline, closeFn, err := app.NewPipeline(cmd.Context(), log, cfg)
			if err != nil {
				return err
			}
			defer closeFn()
			return runRoadmap(cmd.Context(), cmd.OutOrStdout(), pipeline, opts)
		},
	}
	cmd.Flags().StringVar(&opts.career, "career", "", "Career goal, e.g. \"Data Scientist\"")
	cmd.Flags().StringVar(&opts.difficulty, "difficulty", "beginner", "Difficulty label")
	cmd.Flags().BoolVar(&opts.suggestions, "suggestions", false, "Print skill suggestions instead of a roadmap")
	return cmd
}

func runRoadmap(ctx context.Context, out io.Writer, svc services.RoadmapService, opts roadmapOpts) error {
	var (
		payload any
		err     error
	)
	if opts.suggestions {
		payload, err = svc.Suggestions(ctx, opts.career, opts.difficulty)
	} else {
		payload, err = svc.Roadmap(ctx, opts.career, opts.difficulty)
	}
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
