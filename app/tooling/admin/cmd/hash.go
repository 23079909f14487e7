package cmd

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/spf13/cobra"
)

var hashCmd = &cobra.Command{
	Use:   "hash <file>",
	Short: "Print the content hash and cid of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  hashRun,
}

func init() {
	rootCmd.AddCommand(hashCmd)
}

func hashRun(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	c, err := contentCID(content)
	if err != nil {
		return err
	}

	fmt.Println("content_hash:", crypto.Keccak256Hash(content).Hex())
	fmt.Println("cid:         ", c)
	return nil
}

// contentCID returns the version 1 raw cid of the content.
func contentCID(content []byte) (string, error) {
	mh, err := multihash.Sum(content, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}

	return cid.NewCidV1(cid.Raw, mh).String(), nil
}
