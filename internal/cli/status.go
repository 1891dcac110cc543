package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/artvc/art/internal/core"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the working tree status",
	Run:   runStatus,
}

func runStatus(cmd *cobra.Command, args []string) {
	c := initContext()

	status, err := core.Status(c.Config, c.Store, c.Ignore)
	if err != nil {
		exitError("%v", err)
	}

	fmt.Printf("On branch %s\n", status.ActiveBranch)
	if status.LastCommit == "" {
		fmt.Println("No commits yet")
	} else {
		fmt.Printf("Commit: %s\n", shortHash(status.LastCommit))
	}

	if status.Clean() {
		fmt.Println("\nNothing to commit, working tree clean")
		return
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)

	if len(status.Staged) > 0 {
		fmt.Println("\nChanges to be committed:")
		cyan.Println("  (use \"art reset\" to unstage)")
		for _, f := range status.Staged {
			green.Printf("        %s\n", f)
		}
	}

	if len(status.Modified) > 0 {
		fmt.Println("\nChanges not staged for commit:")
		cyan.Println("  (use \"art add <path>\" to stage)")
		for _, f := range status.Modified {
			red.Printf("        modified:   %s\n", f)
		}
	}

	if len(status.Untracked) > 0 {
		fmt.Println("\nUntracked files:")
		cyan.Println("  (use \"art add <path>\" to track)")
		for _, f := range status.Untracked {
			red.Printf("        %s\n", f)
		}
	}
}

// shortHash returns the first 7 characters of a commit hash.
func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
