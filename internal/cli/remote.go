package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var remoteCmd = &cobra.Command{
	Use:   "remote [url|slug]",
	Short: "Show or set the sync remote",
	Long: `Without arguments, show the configured remote. With an argument, set
it: either a full URL (http://host/owner/name) or a bare owner/name
slug resolved against the configured host.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRemote,
}

func runRemote(cmd *cobra.Command, args []string) {
	c := initContext()

	head, err := c.Store.Head()
	if err != nil {
		exitError("%v", err)
	}

	if len(args) == 0 {
		if head.Remote == "" {
			fmt.Println("No remote configured")
			return
		}
		fmt.Println(head.Remote)
		return
	}

	head.Remote = args[0]
	if err := c.Store.SaveHead(head); err != nil {
		exitError("%v", err)
	}
	fmt.Printf("Remote set to %s\n", head.Remote)
}
