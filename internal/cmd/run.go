package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/discourse/internal/ai"
	"github.com/Iron-Ham/discourse/internal/audit"
	"github.com/Iron-Ham/discourse/internal/config"
	"github.com/Iron-Ham/discourse/internal/console"
	"github.com/Iron-Ham/discourse/internal/logging"
	"github.com/Iron-Ham/discourse/internal/orchestrator"
	"github.com/Iron-Ham/discourse/internal/session"
	"github.com/Iron-Ham/discourse/internal/transcript"
)

var (
	runOutputDir string
	runDryRun    bool
)

var runCmd = &cobra.Command{
	Use:   "run <config.yaml>",
	Short: "Run a discourse from a config file",
	Long: `Run loads a YAML run configuration, creates a timestamped run
directory under the output directory, and drives the configured mode
to completion. Ctrl-C finalizes the artifacts with an interrupted
status instead of leaving them half-written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiscourse(cmd.Context(), args[0])
	},
}

func init() {
	runCmd.Flags().StringVarP(&runOutputDir, "output-dir", "o", "", "override the configured output directory")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "validate the config and show the run plan without invoking anything")
	rootCmd.AddCommand(runCmd)
}

func runDiscourse(ctx context.Context, configPath string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	if runDryRun {
		printPlan(cfg)
		return nil
	}

	runDir, err := orchestrator.PrepareRunDir(cfg, runOutputDir)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(runDir, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Close()

	sessions, err := session.NewRegistry(runDir)
	if err != nil {
		return err
	}
	auditLog, err := audit.Open(runDir)
	if err != nil {
		return err
	}
	defer auditLog.Close()

	invoker := ai.NewCLIInvoker(cfg.Claude.Command, cfg.Claude.PermissionMode, cfg.TurnTimeout(), logger)
	invoker.DumpDir = filepath.Join(runDir, ".discourse-debug")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := orchestrator.Options{
		Config:   cfg,
		Invoker:  invoker,
		Sessions: sessions,
		Audit:    auditLog,
		UI:       console.NewTerminal(os.Stdin, os.Stdout),
		Logger:   logger.WithMode(cfg.Mode),
		RunDir:   runDir,
	}

	var status transcript.Status
	switch cfg.Mode {
	case config.ModeWorkshop:
		w, err := orchestrator.NewWorkshop(opts)
		if err != nil {
			return err
		}
		status, err = w.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Git history: git -C %s log --oneline\n", runDir)

	default:
		d, err := orchestrator.NewDebate(opts)
		if err != nil {
			return err
		}
		status, err = d.Run(ctx)
		if err != nil {
			return err
		}
	}

	fmt.Printf("\nRun saved to: %s (%s)\n", runDir, status)
	return nil
}

// printPlan summarizes what a run would do, without creating any state.
func printPlan(cfg *config.Config) {
	fmt.Printf("Mode: %s\n", cfg.Mode)
	fmt.Printf("Topic: %s\n", cfg.Topic)
	for _, key := range config.RoleKeys(cfg.Mode) {
		p := cfg.Participants[key]
		fmt.Printf("  %s: %s\n", key, p.Name)
	}
	if cfg.Mode == config.ModeWorkshop {
		fmt.Printf("Brief: %s\n", cfg.Brief)
		if cfg.SourceFile != "" {
			fmt.Printf("Seed document: %s\n", cfg.SourceFile)
		}
	}
	fmt.Printf("Max turns: %d, check-in every %d turns, %ds per invocation\n",
		cfg.MaxTurns, cfg.CheckInInterval, cfg.TurnTimeoutSeconds)
	fmt.Printf("Output directory: %s\n", outputDirFor(cfg))
	fmt.Printf("Backend: %s (--permission-mode %s)\n", cfg.Claude.Command, cfg.Claude.PermissionMode)
	fmt.Println("\nDry run: no session started.")
}

func outputDirFor(cfg *config.Config) string {
	if runOutputDir != "" {
		return runOutputDir
	}
	return cfg.OutputDir
}
