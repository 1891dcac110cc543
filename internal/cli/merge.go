package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/artvc/art/internal/core"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <name>",
	Short: "Merge a branch into the active branch",
	Long: `Three-way merge of the named branch into the active branch. Results
are written to the working tree and staged; commit them to finish the
merge. Conflicting files are written with conflict markers.`,
	Args: cobra.ExactArgs(1),
	Run:  runMerge,
}

func runMerge(cmd *cobra.Command, args []string) {
	c := initContext()

	result, err := core.Merge(c.Config, c.Store, args[0])
	if err != nil {
		exitError("%v", err)
	}

	if result.UpToDate() {
		fmt.Println("Already up to date.")
		return
	}

	for _, f := range result.Merged {
		fmt.Printf("Merged %s\n", f)
	}
	for _, f := range result.Deleted {
		fmt.Printf("Deleted %s\n", f)
	}
	if len(result.Conflicts) > 0 {
		red := color.New(color.FgRed)
		for _, f := range result.Conflicts {
			red.Printf("CONFLICT (content): %s\n", f)
		}
		fmt.Println("Automatic merge failed; fix conflicts and commit the result.")
		return
	}
	fmt.Printf("Merge staged; run 'art commit' to finish.\n")
}
