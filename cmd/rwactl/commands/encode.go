package commands

import (
	"fmt"
	"rwa-mint/internal/blockchain"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

func encodeArgsCmd() *cobra.Command {
	var data blockchain.MintData

	cmd := &cobra.Command{
		Use:   "encode-args",
		Short: "ABI encode the data argument of mint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			encoded, err := blockchain.EncodeMintData(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(encoded))
			return nil
		},
	}

	cmd.Flags().StringVar(&data.Title, "title", "", "asset title")
	cmd.Flags().StringVar(&data.Category, "category", "", "asset category")
	cmd.Flags().StringVar(&data.Location, "location", "", "asset location")
	cmd.Flags().StringVar(&data.MetadataURI, "metadata-uri", "", "CID of the pinned metadata")
	cmd.Flags().StringVar(&data.ImageURI, "image-uri", "", "CID of the pinned thumbnail")
	cmd.Flags().StringVar(&data.Signature, "signature", "0x", "hex legal contract signature")
	cmd.Flags().StringVar(&data.ContractURI, "contract-uri", "", "CID of the signed agreement")

	return cmd
}

func decodeUTF8Cmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode-utf8 <hex>",
		Short: "Decode a hex oracle response into text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decoded, err := blockchain.DecodeUTF8Hex(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), decoded)
			return nil
		},
	}
}
