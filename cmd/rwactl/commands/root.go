// Package commands holds the one-off operations around the RWA contract: mint
// data encoding, oracle requests, operator keys and proof requests.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"rwa-mint/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	verbose    bool
	logger     = zap.NewNop()
)

func Execute() error {
	return NewRootCmd().Execute()
}

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rwactl",
		Short:         "Operations around the RWA token contract",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				if err := config.ReadConfigFile(configFile); err != nil {
					return fmt.Errorf("failed to read the config file: %w", err)
				}
			}
			if verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				logger = l
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "yaml or env file with the settings")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		encodeArgsCmd(),
		decodeUTF8Cmd(),
		valuationCmd(),
		updateRequestCmd(),
		proofRequestCmd(),
		keygenCmd(),
	)
	return root
}

func printJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
