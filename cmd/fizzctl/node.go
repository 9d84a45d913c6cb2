package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spheronfdn/fizz-sdk-go/pkg/fizz"
	"github.com/spheronfdn/fizz-sdk-go/pkg/model"
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Query and register Fizz nodes",
}

var nodeGetCmd = &cobra.Command{
	Use:   "get <fizz-id>",
	Short: "Show a node by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("fizz id", args[0])
		if err != nil {
			return err
		}
		core, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer core.Close()

		node, err := core.Fizz().NodeByID(cmd.Context(), id)
		if err != nil {
			return friendly(err)
		}
		return printJSON(cmd.OutOrStdout(), node)
	},
}

var nodeByAddressCmd = &cobra.Command{
	Use:   "by-address <wallet>",
	Short: "Show the node registered by a wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !common.IsHexAddress(args[0]) {
			return fmt.Errorf("invalid wallet address %q", args[0])
		}
		core, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer core.Close()

		node, err := core.Fizz().NodeByAddress(cmd.Context(), common.HexToAddress(args[0]))
		if err != nil {
			return friendly(err)
		}
		return printJSON(cmd.OutOrStdout(), node)
	},
}

var nodeListRegion string

var nodeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every registered node",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		core, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer core.Close()

		nodes, err := core.Fizz().AllNodes(cmd.Context())
		if err != nil {
			return friendly(err)
		}
		if nodeListRegion != "" {
			filtered := nodes[:0]
			for _, n := range nodes {
				if n.Region == nodeListRegion {
					filtered = append(filtered, n)
				}
			}
			nodes = filtered
		}
		return printJSON(cmd.OutOrStdout(), nodes)
	},
}

type registerFlags struct {
	ProviderID   string
	Spec         string
	Wallet       string
	RewardWallet string
	Payments     []string
	Wait         bool
	WaitTimeout  time.Duration
}

var register registerFlags

var nodeRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a node for the configured key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := register.params()
		if err != nil {
			return err
		}
		core, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer core.Close()

		if !register.Wait {
			receipt, err := core.Fizz().AddNode(cmd.Context(), params)
			if err != nil {
				return friendly(err)
			}
			return printJSON(cmd.OutOrStdout(), receipt)
		}
		created, err := registerAndWait(cmd.Context(), core.Fizz(), params, register.WaitTimeout)
		if err != nil {
			return friendly(err)
		}
		return printJSON(cmd.OutOrStdout(), created)
	},
}

func (f registerFlags) params() (model.NodeParams, error) {
	providerID, err := parseID("provider id", f.ProviderID)
	if err != nil {
		return model.NodeParams{}, err
	}
	p := model.NodeParams{ProviderID: providerID, Spec: f.Spec}
	if f.RewardWallet == "" {
		f.RewardWallet = f.Wallet
	}
	for name, raw := range map[string]string{"wallet": f.Wallet, "reward wallet": f.RewardWallet} {
		if !common.IsHexAddress(raw) {
			return model.NodeParams{}, fmt.Errorf("invalid %s %q", name, raw)
		}
	}
	p.WalletAddress = common.HexToAddress(f.Wallet)
	p.RewardWallet = common.HexToAddress(f.RewardWallet)
	for _, raw := range f.Payments {
		if !common.IsHexAddress(raw) {
			return model.NodeParams{}, fmt.Errorf("invalid payment token %q", raw)
		}
		p.PaymentsAccepted = append(p.PaymentsAccepted, common.HexToAddress(raw))
	}
	return p, p.Validate()
}

// registerAndWait subscribes to node creation, submits the registration once
// the subscription is live and returns the matched event.
func registerAndWait(ctx context.Context, client *fizz.Client, params model.NodeParams, timeout time.Duration) (model.NodeCreated, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		ev  model.NodeCreated
		err error
	}
	ready := make(chan struct{})
	done := make(chan result, 1)
	go func() {
		ev, err := client.WaitNodeCreated(ctx, fizz.WaitOptions[model.NodeCreated]{
			Timeout: timeout,
			Ready:   func() { close(ready) },
		})
		done <- result{ev, err}
	}()

	select {
	case <-ready:
	case r := <-done:
		return model.NodeCreated{}, r.err
	}
	if _, err := client.AddNode(ctx, params); err != nil {
		return model.NodeCreated{}, err
	}
	r := <-done
	return r.ev, r.err
}

func init() {
	nodeCmd.AddCommand(nodeGetCmd, nodeByAddressCmd, nodeListCmd, nodeRegisterCmd)

	nodeListCmd.Flags().StringVar(&nodeListRegion, "region", "", "only list nodes of this region")

	f := nodeRegisterCmd.Flags()
	f.StringVar(&register.ProviderID, "provider-id", "", "provider the node belongs to")
	f.StringVar(&register.Spec, "spec", "", "comma-separated node specification")
	f.StringVar(&register.Wallet, "wallet", "", "wallet address of the node")
	f.StringVar(&register.RewardWallet, "reward-wallet", "", "wallet receiving rewards (default --wallet)")
	f.StringSliceVar(&register.Payments, "payments", nil, "accepted payment token addresses")
	f.BoolVar(&register.Wait, "wait", false, "wait for the FizzNodeAdded event")
	f.DurationVar(&register.WaitTimeout, "wait-timeout", 0, "event wait timeout (default from config)")
	_ = nodeRegisterCmd.MarkFlagRequired("provider-id")
	_ = nodeRegisterCmd.MarkFlagRequired("spec")
	_ = nodeRegisterCmd.MarkFlagRequired("wallet")
}
