// Package cli implements the command-line interface for art.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artvc/art/internal/config"
	"github.com/artvc/art/internal/ignore"
	"github.com/artvc/art/internal/remote"
	"github.com/artvc/art/internal/store"
)

// cmdContext holds common resources for CLI commands.
type cmdContext struct {
	Config *config.Config
	Store  *store.Store
	Ignore *ignore.Matcher
}

// initContext locates the repository and opens its store.
func initContext() *cmdContext {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}

	st, err := store.Open(cfg.ArtPath())
	if err != nil {
		exitError("failed to open store: %v", err)
	}

	return &cmdContext{
		Config: cfg,
		Store:  st,
		Ignore: ignore.NewMatcher(cfg.WorkTree()),
	}
}

// remoteClient builds a sync client from the repository's configured
// remote and the user-level defaults.
func (c *cmdContext) remoteClient() remote.Client {
	head, err := c.Store.Head()
	if err != nil {
		exitError("%v", err)
	}
	user, err := config.LoadUserConfig()
	if err != nil {
		exitError("%v", err)
	}
	client, err := remote.Resolve(head, user)
	if err != nil {
		exitError("%v", err)
	}
	return client
}

var rootCmd = &cobra.Command{
	Use:   "art",
	Short: "A local, file-based version control system",
	Long: `art is a file-based version control system. It records changes to a
working tree as a chain of commits replayed over an initial snapshot,
with branching, merging, stashing, and a simple HTTP sync protocol.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cloneCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(remoteCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(stashCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(rmCmd)
}

// exitError prints an error and exits with status 1.
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
