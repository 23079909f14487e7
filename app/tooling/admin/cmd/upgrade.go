package cmd

import (
	"fmt"

	"github.com/ardanlabs/registry/foundation/registry/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var upgradeVersion uint16

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Install a new registry version, signed by the admin key",
	RunE:  upgradeRun,
}

func init() {
	rootCmd.AddCommand(upgradeCmd)
	upgradeCmd.Flags().Uint16VarP(&upgradeVersion, "version", "v", 2, "Version to install.")
}

func upgradeRun(cmd *cobra.Command, args []string) error {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		return err
	}

	req := database.UpgradeRequest{
		Version: upgradeVersion,
	}

	signed, err := database.Sign(req, privateKey)
	if err != nil {
		return err
	}

	return post(fmt.Sprintf("%s/v1/node/upgrade", privateURL), signed)
}
