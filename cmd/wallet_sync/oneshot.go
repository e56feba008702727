package main

import (
	"context"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/app/provider"
	"wallet_sync/internal/domain/entity"
)

func newSnapshotCmd(configPath *string) *cobra.Command {
	var (
		address string
		network string
		balance string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the balance snapshot of one wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := entity.ParseNetwork(network)
			if err != nil {
				return err
			}
			c, err := buildComponents(*configPath, nil)
			if err != nil {
				return err
			}
			defer func() { _ = c.zapLogger.Sync() }()

			var wallets port.WalletSource = c.wallets
			if balance != "" {
				static := provider.NewStaticWalletSource()
				static.Set(address, net, balance)
				wallets = static
			}

			ctx := commandContext(cmd)
			native, err := wallets.NativeBalance(ctx, address, net)
			if err != nil {
				return err
			}
			snapshot, err := c.newAggregator().GetSnapshot(ctx, entity.BalanceRequest{
				Address:       address,
				Network:       net,
				NativeBalance: native,
				BypassCache:   force,
			})
			if err != nil {
				return err
			}
			return printJSON(snapshot)
		},
	}
	cmd.Flags().StringVarP(&address, "address", "a", "", "Wallet address")
	cmd.Flags().StringVarP(&network, "network", "n", string(entity.NetworkMainnet), "Network: mainnet or testnet")
	cmd.Flags().StringVar(&balance, "balance", "", "Use this native balance instead of reading it from the indexer")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Bypass the price cache")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func newTransactionsCmd(configPath *string) *cobra.Command {
	var (
		address string
		network string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Print the normalized transaction history of one wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := entity.ParseNetwork(network)
			if err != nil {
				return err
			}
			c, err := buildComponents(*configPath, nil)
			if err != nil {
				return err
			}
			defer func() { _ = c.zapLogger.Sync() }()

			txs, err := c.newNormalizer().FetchTransactions(commandContext(cmd), address, net, limit)
			if err != nil {
				return err
			}
			return printJSON(txs)
		},
	}
	cmd.Flags().StringVarP(&address, "address", "a", "", "Wallet address")
	cmd.Flags().StringVarP(&network, "network", "n", string(entity.NetworkMainnet), "Network: mainnet or testnet")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Number of transactions (0 uses indexer.defaultLimit)")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printJSON(v any) error {
	enc := jsoniter.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
