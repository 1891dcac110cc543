package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artvc/art/internal/remote"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download remote branch histories into the mirror",
	Long: `Download every remote branch manifest and missing commit into the
remote mirror. Local histories are never modified by fetch.`,
	Run: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) {
	c := initContext()
	client := c.remoteClient()

	result, err := remote.Fetch(context.Background(), c.Config, c.Store, client)
	if err != nil {
		exitError("%v", err)
	}
	fmt.Printf("Fetched %d commit(s) across %d branch(es)\n", result.Commits, len(result.Branches))
}
