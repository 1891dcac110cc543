package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artvc/art/internal/core"
)

var stashCmd = &cobra.Command{
	Use:   "stash [pop|list]",
	Short: "Stash uncommitted changes",
	Long: `Save the working-tree delta against the active state and revert the
tree to its last committed state. 'stash pop' applies the newest stash
back onto the tree and drops it; 'stash list' shows saved stashes.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runStash,
}

func runStash(cmd *cobra.Command, args []string) {
	c := initContext()

	sub := ""
	if len(args) == 1 {
		sub = args[0]
	}

	switch sub {
	case "":
		dirName, err := core.StashPush(c.Config, c.Store, c.Ignore)
		if err != nil {
			exitError("%v", err)
		}
		if dirName == "" {
			fmt.Println("No local changes to stash")
			return
		}
		fmt.Println("Saved working tree changes")

	case "list":
		stashes, err := core.StashList(c.Store)
		if err != nil {
			exitError("%v", err)
		}
		for _, s := range stashes {
			fmt.Printf("%s: %s\n", s.ID(), s.Date())
		}

	case "pop":
		entry, err := core.StashPop(c.Config, c.Store)
		if err != nil {
			exitError("%v", err)
		}
		fmt.Printf("Applied and dropped %s\n", entry.ID())

	default:
		exitError("unknown stash subcommand '%s'", sub)
	}
}
