package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artvc/art/internal/core"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <name>",
	Short: "Switch the working tree to a branch",
	Long: `Switch to a branch, creating it from the active branch when it does
not exist. A dirty working tree aborts the switch unless --force.`,
	Args: cobra.ExactArgs(1),
	Run:  runCheckout,
}

var checkoutForce bool

func init() {
	checkoutCmd.Flags().BoolVarP(&checkoutForce, "force", "f", false, "Discard local changes")
}

func runCheckout(cmd *cobra.Command, args []string) {
	c := initContext()

	result, err := core.Checkout(c.Config, c.Store, args[0], core.CheckoutOptions{Force: checkoutForce})
	if err != nil {
		exitError("%v", err)
	}

	if result.Created {
		fmt.Printf("Switched to a new branch '%s'\n", result.Branch)
		return
	}
	fmt.Printf("Switched to branch '%s'\n", result.Branch)
}
