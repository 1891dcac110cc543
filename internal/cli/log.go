package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/artvc/art/internal/core"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show commit history",
	Long:  `Display the commit history of the active branch, newest first.`,
	Run:   runLog,
}

func runLog(cmd *cobra.Command, args []string) {
	c := initContext()

	commits, err := core.Log(c.Config, c.Store)
	if err != nil {
		exitError("%v", err)
	}
	if len(commits) == 0 {
		fmt.Println("No commits yet")
		return
	}

	yellow := color.New(color.FgYellow)
	for _, commit := range commits {
		yellow.Printf("commit %s\n", commit.Hash)
		fmt.Printf("Date:   %s\n", commit.Time().Format("Mon Jan 2 15:04:05 2006"))
		fmt.Printf("\n    %s\n\n", commit.Message)
	}
}
