package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artvc/art/internal/config"
	"github.com/artvc/art/internal/models"
	"github.com/artvc/art/internal/remote"
)

var cloneCmd = &cobra.Command{
	Use:   "clone <handle/repo> [dir]",
	Short: "Clone a remote repository",
	Long: `Download a remote repository — root snapshot, branch histories, and
commits — into a new directory and check out its default branch.`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runClone,
}

var cloneToken string

func init() {
	cloneCmd.Flags().StringVar(&cloneToken, "token", "", "Authentication token")
}

func runClone(cmd *cobra.Command, args []string) {
	slugArg := args[0]

	user, err := config.LoadUserConfig()
	if err != nil {
		exitError("%v", err)
	}
	if cloneToken != "" {
		user.Token = cloneToken
	}

	head := models.NewHeadState("")
	head.Remote = slugArg
	client, err := remote.Resolve(head, user)
	if err != nil {
		exitError("%v", err)
	}

	slug := slugArg
	if idx := strings.Index(slug, "://"); idx >= 0 {
		if slash := strings.Index(slug[idx+3:], "/"); slash >= 0 {
			slug = slug[idx+3+slash+1:]
		}
	}

	dest := filepath.Base(slug)
	if len(args) == 2 {
		dest = args[1]
	}

	if err := remote.Clone(context.Background(), dest, slug, client); err != nil {
		exitError("%v", err)
	}
	fmt.Printf("Cloned %s into %s\n", slug, dest)
}
