package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/skillmapper-backend/internal/app"
	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
)

// NewRootCmd builds the skillmapper command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "skillmapper",
		Short:         "SkillMapper backend",
		Long:          `Generates AI learning roadmaps with link-checked resources and stores user progress.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "YAML config file (or set "+app.ConfigFileEnv+")")
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			return os.Setenv(app.ConfigFileEnv, path)
		}
		return nil
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newRoadmapCmd())
	root.AddCommand(newMigrateCmd())
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// setup builds the logger and configuration shared by every subcommand.
func setup() (*logger.Logger, app.Config, error) {
	log, err := app.NewLogger()
	if err != nil {
		return nil, app.Config{}, err
	}
	cfg, err := app.LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, app.Config{}, err
	}
	return log, cfg, nil
}
