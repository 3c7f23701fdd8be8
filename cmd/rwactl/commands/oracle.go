package commands

import (
	"context"
	"errors"
	"fmt"
	"rwa-mint/internal/blockchain"
	"rwa-mint/internal/config"
	"rwa-mint/internal/keymanager"
	"rwa-mint/internal/oracle"
	"rwa-mint/internal/propertydata"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

func valuationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "valuation <address>",
		Short: "Fetch the estimated value of a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := propertydata.NewClient(logger, config.GetAttomURL(), config.GetAttomAPIKey(), config.GetPropertyCacheTTL(), config.GetRequestTimeout())

			value, err := client.HomeEquityValue(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func updateRequestCmd() *cobra.Command {
	var (
		requestFile string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "update-request",
		Short: "Store the Chainlink Functions request in the contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			requestConfig, err := oracle.LoadRequestConfig(requestFile)
			if err != nil {
				return err
			}
			request, err := requestConfig.BuildRequest()
			if err != nil {
				return err
			}
			encoded, err := request.EncodeCBOR()
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(encoded))
				return nil
			}

			key := config.GetOperatorPrivateKey()
			if key == "" {
				return errors.New("OPERATOR_PRIVATE_KEY is required to send the request")
			}
			keys, err := keymanager.NewKeyManager(logger).LoadKeys(key)
			if err != nil {
				return err
			}
			transactor, err := keys.GetTransactor(config.GetChainID())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), config.GetRequestTimeout())
			defer cancel()
			client, closeClient, err := blockchain.Dial(ctx, logger, config.GetRPCURL(), config.GetContractAddress(), transactor)
			if err != nil {
				return err
			}
			defer closeClient()

			txHash, err := client.UpdateRequest(cmd.Context(), encoded, requestConfig.SubscriptionID, requestConfig.GasLimit, requestConfig.DonID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), txHash)
			return nil
		},
	}

	cmd.Flags().StringVarP(&requestFile, "request", "r", "functions-request.yaml", "request definition file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the CBOR request instead of sending it")

	return cmd
}
