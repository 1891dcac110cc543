package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artvc/art/internal/remote"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the active branch to the remote",
	Run:   runPush,
}

func runPush(cmd *cobra.Command, args []string) {
	c := initContext()
	client := c.remoteClient()

	head, err := c.Store.Head()
	if err != nil {
		exitError("%v", err)
	}

	result, err := remote.Push(context.Background(), c.Config, c.Store, client, head.Active.Branch)
	if err != nil {
		exitError("%v", err)
	}
	if result.UpToDate {
		fmt.Println("Everything up to date.")
		return
	}
	fmt.Printf("Pushed %d commit(s) to %s\n", result.Pushed, result.Branch)
}
