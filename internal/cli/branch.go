package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/artvc/art/internal/core"
)

var branchCmd = &cobra.Command{
	Use:   "branch [name]",
	Short: "List, create, or delete branches",
	Long: `Without a name, list local branches. With a name, create a branch
seeded from the active branch. With -d, delete a branch.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runBranch,
}

var branchDelete bool

func init() {
	branchCmd.Flags().BoolVarP(&branchDelete, "delete", "d", false, "Delete the named branch")
	branchCmd.Flags().BoolVarP(&branchDelete, "force-delete", "D", false, "Alias of --delete")
}

func runBranch(cmd *cobra.Command, args []string) {
	c := initContext()

	if len(args) == 0 {
		if branchDelete {
			exitError("branch name required with --delete")
		}
		names, active, err := core.ListBranches(c.Store)
		if err != nil {
			exitError("%v", err)
		}
		green := color.New(color.FgGreen)
		for _, name := range names {
			if name == active {
				green.Printf("* %s\n", name)
				continue
			}
			fmt.Printf("  %s\n", name)
		}
		return
	}

	name := args[0]
	if branchDelete {
		if err := core.DeleteBranch(c.Config, c.Store, name); err != nil {
			exitError("%v", err)
		}
		fmt.Printf("Deleted branch %s\n", name)
		return
	}

	if err := core.CreateBranch(c.Config, c.Store, name); err != nil {
		exitError("%v", err)
	}
	fmt.Printf("Created branch %s\n", name)
}
