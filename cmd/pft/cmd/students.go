package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pft/internal/students"
	"pft/internal/view"
)

var studentsFormat string

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "Print the student marks cards",
	Long: `Print the scored marks card of every student in the roster.

Examples:
  pft students                  # plain text
  pft students --format html    # standalone HTML page`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cards := students.Cards(students.Roster())
		out := cmd.OutOrStdout()
		switch studentsFormat {
		case "text":
			return view.WriteStudentCards(out, cards)
		case "html":
			return view.Render(out, view.StudentsPage(cards))
		default:
			return fmt.Errorf("unknown format %q: must be text or html", studentsFormat)
		}
	},
}

func init() {
	studentsCmd.Flags().StringVar(&studentsFormat, "format", "text", "output format: text or html")
	rootCmd.AddCommand(studentsCmd)
}
