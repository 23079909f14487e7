package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/registry/foundation/registry/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	blockID     string
	parentID    string
	contentHash string
	contentFile string
	method      string
	note        string
	contentID   string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Anchor a block",
	RunE:  submitRun,
}

var extendCmd = &cobra.Command{
	Use:   "extend",
	Short: "Anchor a block with the cid of its content",
	RunE:  extendRun,
}

func init() {
	for _, c := range []*cobra.Command{submitCmd, extendCmd} {
		rootCmd.AddCommand(c)
		c.Flags().StringVarP(&blockID, "id", "i", "", "Unique id for the block.")
		c.Flags().StringVarP(&parentID, "parent", "r", "0", "Id of the parent block.")
		c.Flags().StringVarP(&contentHash, "hash", "x", "", "Hex encoded content hash.")
		c.Flags().StringVarP(&contentFile, "file", "f", "", "File to hash instead of providing the content hash.")
		c.Flags().StringVarP(&method, "method", "m", "manual", "How the block was produced.")
		c.Flags().StringVarP(&note, "note", "n", "", "Free form note.")
		c.MarkFlagRequired("id")
	}
	extendCmd.Flags().StringVarP(&contentID, "cid", "c", "", "Cid of the content, derived from --file when empty.")
}

func submitRun(cmd *cobra.Command, args []string) error {
	sub, _, err := submission()
	if err != nil {
		return err
	}

	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		return err
	}

	signed, err := database.Sign(sub, privateKey)
	if err != nil {
		return err
	}

	return post(fmt.Sprintf("%s/v1/blocks/submit", publicURL), signed)
}

func extendRun(cmd *cobra.Command, args []string) error {
	sub, content, err := submission()
	if err != nil {
		return err
	}

	c := contentID
	if c == "" {
		if content == nil {
			return errors.New("either --cid or --file must be provided")
		}

		if c, err = contentCID(content); err != nil {
			return err
		}
	}

	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		return err
	}

	ext := database.ExtendedSubmission{
		Submission: sub,
		CID:        c,
	}

	signed, err := database.Sign(ext, privateKey)
	if err != nil {
		return err
	}

	return post(fmt.Sprintf("%s/v1/blocks/submit/extended", publicURL), signed)
}

// submission builds the submission from the flags. When a file is provided
// its content is returned so the cid can be derived from it.
func submission() (database.Submission, []byte, error) {
	var content []byte

	hash := contentHash
	if contentFile != "" {
		var err error
		if content, err = os.ReadFile(contentFile); err != nil {
			return database.Submission{}, nil, err
		}
		hash = crypto.Keccak256Hash(content).Hex()
	}

	if hash == "" {
		return database.Submission{}, nil, errors.New("either --hash or --file must be provided")
	}

	sub, err := database.NewSubmission(blockID, parentID, hash, method, note)
	if err != nil {
		return database.Submission{}, nil, err
	}

	return sub, content, nil
}
