// Package cmd wires the discourse CLI.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "discourse",
	Short: "Structured turn-taking between two Claude sessions",
	Long: `Discourse orchestrates a structured exchange between two Claude CLI
sessions. In debate mode two participants alternate turns arguing a
topic, with scheduled human check-ins and closing statements. In
workshop mode an author and an editor iterate on a git-versioned
document until the editor approves it.

Every run produces a self-contained directory holding the transcript
or document, the session registry, a config snapshot, and an
append-only audit log of everything that happened.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
