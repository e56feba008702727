package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wallet_sync/internal/infrastructure/configloader"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	configloader.LoadEnvironment()

	var configPath string

	rootCmd := &cobra.Command{
		Use:           "wallet_sync",
		Short:         "Wallet balance and history sync service",
		Long:          `wallet_sync keeps native balances, fiat values and transaction history of watched wallets fresh.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the YAML config (default: $CONFIG_PATH or config/config.yml)")

	rootCmd.AddCommand(
		newServeCmd(&configPath),
		newSnapshotCmd(&configPath),
		newTransactionsCmd(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalf("Failed to execute command: %v", err)
	}
}
