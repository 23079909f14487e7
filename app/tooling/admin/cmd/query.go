package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print a committed block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return get(fmt.Sprintf("%s/v1/blocks/id/%s", publicURL, args[0]))
	},
}

var cidCmd = &cobra.Command{
	Use:   "cid <id>",
	Short: "Print the cid recorded for a block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return get(fmt.Sprintf("%s/v1/blocks/id/%s/cid", publicURL, args[0]))
	},
}

var listCmd = &cobra.Command{
	Use:   "list [account or name]",
	Short: "Print committed blocks, optionally for one submitter",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := fmt.Sprintf("%s/v1/blocks/list", publicURL)
		if len(args) == 1 {
			url += "/" + args[0]
		}
		return get(url)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the registry status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return get(fmt.Sprintf("%s/v1/registry/status", publicURL))
	},
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the storage layout installed on the node",
	RunE: func(cmd *cobra.Command, args []string) error {
		return get(fmt.Sprintf("%s/v1/node/layout", privateURL))
	},
}

func init() {
	rootCmd.AddCommand(getCmd, cidCmd, listCmd, statusCmd, layoutCmd)
}
