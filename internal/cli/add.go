package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artvc/art/internal/core"
)

var addCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Stage changes for the next commit",
	Long: `Compute the delta of a file or directory against the active state
and record it in the stage. Directories are walked recursively with
.artignore applied; already tracked files bypass ignore rules.`,
	Args: cobra.ExactArgs(1),
	Run:  runAdd,
}

func runAdd(cmd *cobra.Command, args []string) {
	c := initContext()

	count, err := core.Add(c.Config, c.Store, c.Ignore, args[0])
	if err != nil {
		exitError("%v", err)
	}
	fmt.Printf("Added %d file(s) to stage.\n", count)
}
