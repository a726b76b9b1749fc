package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilohertztli/Mathenique/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe locally cached progress",
	Long:  "Wipe the locally cached statistics and lesson progress. Server-side progress is untouched; log in to pull it back down.",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Println("This wipes local progress. Re-run with --yes to confirm.")
			return nil
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		if err := st.ResetProgress(); err != nil {
			return fmt.Errorf("reset progress: %w", err)
		}
		fmt.Println("Local progress wiped.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Skip confirmation")
}
