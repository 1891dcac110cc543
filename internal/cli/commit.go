package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/artvc/art/internal/core"
)

var commitCmd = &cobra.Command{
	Use:   "commit <message>",
	Short: "Record staged changes to the repository",
	Args:  cobra.ExactArgs(1),
	Run:   runCommit,
}

func runCommit(cmd *cobra.Command, args []string) {
	c := initContext()

	head, err := c.Store.Head()
	if err != nil {
		exitError("%v", err)
	}

	commit, err := core.Commit(c.Config, c.Store, args[0])
	if err != nil {
		exitError("%v", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("[%s %s] ", head.Active.Branch, commit.ShortHash())
	fmt.Println(commit.Message)
}
