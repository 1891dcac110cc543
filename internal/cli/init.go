package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/artvc/art/internal/config"
	"github.com/artvc/art/internal/core"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Initialize a new art repository",
	Long: `Initialize a new art repository. The current contents of the
directory become the root snapshot that all history replays from.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runInit,
}

func runInit(cmd *cobra.Command, args []string) {
	dir, err := os.Getwd()
	if err != nil {
		exitError("%v", err)
	}
	if len(args) == 1 {
		dir, err = filepath.Abs(args[0])
		if err != nil {
			exitError("%v", err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			exitError("failed to create %s: %v", dir, err)
		}
	}

	if _, err := core.Init(dir); err != nil {
		exitError("%v", err)
	}
	fmt.Printf("Initialized empty art repository in %s\n", filepath.Join(dir, config.ArtDir))
}
