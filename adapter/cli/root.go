package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	sharedApplication "github.com/felixgeelhaar/arena/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/felixgeelhaar/arena/pkg/observability"
)

var (
	verbose bool
	logger  *slog.Logger
)

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Arena - sales team competitions, goals and plans",
	Long: `Arena manages the organizations, subscriptions and teams behind
sales competitions.

	Plan changes flow from a subscription to its organization and on to
	every team, so member caps always match the current plan.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		var userID uuid.UUID
		if a := GetApp(); a != nil {
			userID = a.CurrentUserID
		}

		ctx, correlationID := observability.NewCommandContext(cmd.Context(), cmd.CommandPath(), userID.String())
		ctx = sharedApplication.WithEventMetadata(ctx, sharedDomain.EventMetadata{
			CorrelationID: correlationID,
			CausationID:   correlationID,
			UserID:        userID,
		})
		ctx = contextWithCommand(ctx, commandContext{correlationID: correlationID, startedAt: time.Now()})
		cmd.SetContext(ctx)

		logger.InfoContext(ctx, "command start")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info, ok := commandFromContext(cmd.Context())
		if !ok {
			return
		}
		logger.InfoContext(cmd.Context(), "command end",
			observability.DurationKey, time.Since(info.startedAt).Milliseconds(),
		)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, exiting non-zero on error.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// RootCommand exposes the command tree, mainly for tests.
func RootCommand() *cobra.Command {
	return rootCmd
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Logger returns the CLI logger.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// Verbose reports whether --verbose was given.
func Verbose() bool {
	return verbose
}
