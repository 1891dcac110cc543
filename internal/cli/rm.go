package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artvc/art/internal/core"
)

var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Stage a file deletion and remove it from the working tree",
	Args:  cobra.ExactArgs(1),
	Run:   runRm,
}

func runRm(cmd *cobra.Command, args []string) {
	c := initContext()

	if err := core.Rm(c.Config, c.Store, args[0]); err != nil {
		exitError("%v", err)
	}
	fmt.Printf("rm '%s'\n", args[0])
}
