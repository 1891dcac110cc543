package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Read or write repository configuration",
	Long: `Without arguments, list all configuration keys. With a key, print
its value. With a key and value, set it.`,
	Args: cobra.MaximumNArgs(2),
	Run:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) {
	c := initContext()

	head, err := c.Store.Head()
	if err != nil {
		exitError("%v", err)
	}

	switch len(args) {
	case 0:
		keys := make([]string, 0, len(head.Configuration))
		for k := range head.Configuration {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s=%s\n", k, head.Configuration[k])
		}

	case 1:
		value, ok := head.Configuration[args[0]]
		if !ok {
			exitError("key '%s' is not set", args[0])
		}
		fmt.Println(value)

	case 2:
		head.Configuration[args[0]] = args[1]
		if err := c.Store.SaveHead(head); err != nil {
			exitError("%v", err)
		}
	}
}
