package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilohertztli/Mathenique/internal/catalog"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show play statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := buildEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		env.load(cmd.Context())
		s := env.progress.Stats()

		accuracy := 0
		if s.TotalQuestions > 0 {
			accuracy = s.CorrectAnswers * 100 / s.TotalQuestions
		}

		fmt.Printf("Games played:           %d\n", s.GamesPlayed)
		fmt.Printf("Questions answered:     %d\n", s.TotalQuestions)
		fmt.Printf("Accuracy:               %d%%\n", accuracy)
		fmt.Printf("Lessons completed:      %d\n", s.LessonsCompleted)
		fmt.Printf("Challenge high score:   %d\n", s.ChallengeHighScore)
		fmt.Printf("Challenge best streak:  %d\n", s.ChallengeBestStreak)
		fmt.Printf("Apocalypse high score:  %d\n", s.ApocalypseHighScore)
		fmt.Printf("Apocalypse best streak: %d\n", s.ApocalypseBestStreak)

		fmt.Println("\nLessons:")
		for _, l := range catalog.Lessons() {
			p := env.progress.Lesson(l.ID)
			fmt.Printf("  %2d. %-28s %d/3 stars\n", l.ID, l.Title, p.Stars)
		}
		return nil
	},
}
