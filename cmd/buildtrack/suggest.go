package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/suggest"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest a project type from a name and description",
	Long: `Runs the keyword matcher used by POST /api/projects/suggest-type.

Example:
  buildtrack suggest --name "Kitchen remodel" --description "new cabinets"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		description, _ := cmd.Flags().GetString("description")
		if strings.TrimSpace(name) == "" && strings.TrimSpace(description) == "" {
			return errors.New("--name or --description is required")
		}

		s := suggest.ProjectType(name, description)
		out := cmd.OutOrStdout()
		if s.ProjectType == "" {
			fmt.Fprintln(out, "No project type matched.")
			return nil
		}
		fmt.Fprintf(out, "Type:       %s\n", s.ProjectType)
		fmt.Fprintf(out, "Confidence: %.2f\n", s.Confidence)
		fmt.Fprintf(out, "Keywords:   %s\n", strings.Join(s.MatchedKeywords, ", "))
		return nil
	},
}

func init() {
	suggestCmd.Flags().String("name", "", "project name")
	suggestCmd.Flags().String("description", "", "project description")
}
