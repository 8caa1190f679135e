package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/atiaron/taskflow/config"
	"github.com/atiaron/taskflow/internal/database"
	"github.com/atiaron/taskflow/internal/logger"
	"github.com/atiaron/taskflow/internal/services"
)

var (
	appVersion = "dev"

	driverFlag string
	dsnFlag    string

	// App is opened before every subcommand and closed after it.
	App *Workspace
)

// SetVersionInfo sets the version injected via ldflags.
func SetVersionInfo(version string) {
	appVersion = version
}

// Workspace bundles the services a command works against.
type Workspace struct {
	DB           *database.DB
	Tasks        *services.TaskService
	Interactions *services.InteractionService
	Engine       *services.AchievementEngine
	Unlocks      *services.UnlockState
	Analyzer     *services.BehaviorAnalyzer
	Memory       *services.PatternMemory
	Location     *time.Location
}

func openWorkspace(cmd *cobra.Command) (*Workspace, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger.SetGlobalLevel(logger.LogLevel(cfg.Log.Level))

	if driverFlag != "" {
		cfg.Database.Driver = driverFlag
	}
	if dsnFlag != "" {
		cfg.Database.DSN = dsnFlag
	}

	loc, err := cfg.Gamification.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.NewDB(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	repo := services.NewAchievementRepository(db)
	engine := services.NewAchievementEngine(repo, repo, nil, services.WithLocation(loc))
	unlocks, err := engine.LoadState(cmd.Context())
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Workspace{
		DB:           db,
		Tasks:        services.NewTaskService(db),
		Interactions: services.NewInteractionService(db),
		Engine:       engine,
		Unlocks:      unlocks,
		Analyzer:     services.NewBehaviorAnalyzer(services.WithAnalyzerLocation(loc)),
		Memory:       services.NewPatternMemory(),
		Location:     loc,
	}, nil
}

var rootCmd = &cobra.Command{
	Use:   "taskflowctl",
	Short: "Inspect TaskFlow progress from the command line",
	Long: `taskflowctl reads the TaskFlow database directly and reports gamification
stats, achievements, learned behavior patterns and assistant usage.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		ws, err := openWorkspace(cmd)
		if err != nil {
			return err
		}
		App = ws
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if App == nil {
			return nil
		}
		err := App.DB.Close()
		App = nil
		return err
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "taskflowctl %s\n", appVersion)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "", "database driver (sqlite3 or postgres)")
	rootCmd.PersistentFlags().StringVar(&dsnFlag, "dsn", "", "database DSN, overrides database.dsn")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
