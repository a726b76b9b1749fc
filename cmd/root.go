package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilohertztli/Mathenique/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mathenique",
	Short: "Gamified arithmetic practice in your terminal",
	Long:  "Mathenique — a terminal game for drilling mental arithmetic: lessons, arena modes, streaks and stars.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MATHENIQUE_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then MATHENIQUE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultPath()
}
