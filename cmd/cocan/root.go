package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cocan/internal/config"
	"cocan/internal/logx"
	"cocan/internal/scenario"
)

var (
	configPath   string
	scenarioFlag string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "cocan",
	Short: "Restaurant kitchen simulation",
	Long: `cocan runs a small restaurant: guests queue at the counter and order,
and you command the chobins that cook and carry each dish.

With no subcommand it serves the game over HTTP and websocket.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: ./cocan.yaml if present)")
	rootCmd.PersistentFlags().StringVarP(&scenarioFlag, "scenario", "s", "", "Scenario preset to apply")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(scenariosCmd)
}

// loadConfig reads the configuration, applies the scenario and validates
// it. Seed 0 is replaced by a clock seed so every game differs.
func loadConfig() (*config.Config, *logx.Logger, error) {
	return readConfig(true)
}

// loadBaseConfig is loadConfig without the scenario preset, for commands
// that apply presets themselves.
func loadBaseConfig() (*config.Config, *logx.Logger, error) {
	return readConfig(false)
}

func readConfig(applyScenario bool) (*config.Config, *logx.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	log := logx.New(os.Stderr, "cocan", logx.ParseLevel(cfg.Log.Level), cfg.Log.Color)

	if applyScenario {
		if scenarioFlag != "" {
			cfg.Scenario = scenarioFlag
		}
		if err := scenario.Apply(cfg, cfg.Scenario); err != nil {
			return nil, nil, err
		}
	}
	if cfg.Simulation.Seed == 0 {
		cfg.Simulation.Seed = time.Now().UnixNano()
	}
	if err := cfg.Validate(log.Named("config")); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if applyScenario {
		log.Infof("scenario %s, seed %d", cfg.Scenario, cfg.Simulation.Seed)
	}
	return cfg, log, nil
}
