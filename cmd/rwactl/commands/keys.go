package commands

import (
	"rwa-mint/internal/keymanager"
	"rwa-mint/internal/verifier"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

type generatedKeys struct {
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
	PublicKey  string `json:"publicKey"`
}

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate an operator key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := keymanager.NewKeyManager(logger).GenerateKeys()
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), generatedKeys{
				Address:    keys.Address().Hex(),
				PrivateKey: keys.PrivateKeyHex(),
				PublicKey:  hexutil.Encode(keys.PublicKeyBytes()),
			})
		},
	}
}

func proofRequestCmd() *cobra.Command {
	var (
		callbackURL string
		did         string
		sessionID   string
	)

	cmd := &cobra.Command{
		Use:   "proof-request",
		Short: "Print a KYC proof request for a wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			issuer, err := verifier.NewIssuer(logger, callbackURL, did, time.Minute)
			if err != nil {
				return err
			}

			_, request, err := issuer.SignIn(sessionID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), request)
		},
	}

	cmd.Flags().StringVar(&callbackURL, "callback", "", "URL the wallet posts the proof to")
	cmd.Flags().StringVar(&did, "did", "", "verifier DID")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id, generated when empty")

	return cmd
}
