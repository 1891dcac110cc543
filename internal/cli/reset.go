package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artvc/art/internal/core"
)

var resetCmd = &cobra.Command{
	Use:   "reset [hash]",
	Short: "Unstage changes or move the branch head back to a commit",
	Long: `Without a hash, destroy the stage. With a hash, move the active
branch head back to that commit and restore the working tree.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runReset,
}

func runReset(cmd *cobra.Command, args []string) {
	c := initContext()

	hash := ""
	if len(args) == 1 {
		hash = args[0]
	}

	if err := core.Reset(c.Config, c.Store, hash); err != nil {
		exitError("%v", err)
	}
	if hash == "" {
		fmt.Println("Unstaged all changes")
		return
	}
	fmt.Printf("Reset branch to %s\n", shortHash(hash))
}
