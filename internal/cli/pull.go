package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artvc/art/internal/remote"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch the active branch and fast-forward it",
	Run:   runPull,
}

func runPull(cmd *cobra.Command, args []string) {
	c := initContext()
	client := c.remoteClient()

	head, err := c.Store.Head()
	if err != nil {
		exitError("%v", err)
	}

	result, err := remote.Pull(context.Background(), c.Config, c.Store, client, head.Active.Branch)
	if err != nil {
		exitError("%v", err)
	}
	if result.UpToDate {
		fmt.Println("Already up to date.")
		return
	}
	fmt.Printf("Updated %s with %d new commit(s)\n", result.Branch, result.Commits)
}
