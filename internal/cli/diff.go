package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/artvc/art/internal/core"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show working-tree changes against the active state",
	Run:   runDiff,
}

func runDiff(cmd *cobra.Command, args []string) {
	c := initContext()

	result, err := core.Diff(c.Config, c.Store)
	if err != nil {
		exitError("%v", err)
	}

	if len(result.FileDiffs) == 0 && len(result.Staged) == 0 {
		fmt.Println("No changes")
		return
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	for _, fd := range result.FileDiffs {
		fmt.Printf("--- %s\n", fd.File)
		if fd.Deleted != "" {
			red.Printf("- %s\n", fd.Deleted)
		}
		if fd.Added != "" {
			green.Printf("+ %s\n", fd.Added)
		}
	}

	if len(result.Staged) > 0 {
		fmt.Println("\nStaged files:")
		for _, f := range result.Staged {
			green.Printf("        %s\n", f)
		}
	}
}
