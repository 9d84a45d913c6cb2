package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spheronfdn/fizz-sdk-go/pkg/model"
)

var leaseCmd = &cobra.Command{
	Use:   "lease",
	Short: "Query compute leases",
}

var leaseFlags struct {
	ProviderID string
	Scope      string
}

var leaseListCmd = &cobra.Command{
	Use:   "list <fizz-id>",
	Short: "List the leases of a node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nodeID, err := parseID("fizz id", args[0])
		if err != nil {
			return err
		}
		providerID, err := parseID("provider id", leaseFlags.ProviderID)
		if err != nil {
			return err
		}
		scope, err := parseScope(leaseFlags.Scope)
		if err != nil {
			return err
		}
		core, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer core.Close()

		leases, err := core.Fizz().Leases(cmd.Context(), nodeID, providerID, scope)
		if err != nil {
			return friendly(err)
		}
		return printJSON(cmd.OutOrStdout(), leaseViews(leases))
	},
}

func parseScope(raw string) (model.LeaseScope, error) {
	switch s := model.LeaseScope(strings.ToUpper(raw)); s {
	case model.ScopeActive, model.ScopeAll:
		return s, nil
	default:
		return "", fmt.Errorf("invalid scope %q, want ACTIVE or ALL", raw)
	}
}

func init() {
	leaseCmd.AddCommand(leaseListCmd)
	leaseListCmd.Flags().StringVar(&leaseFlags.ProviderID, "provider-id", "", "provider holding the leases")
	leaseListCmd.Flags().StringVar(&leaseFlags.Scope, "scope", string(model.ScopeActive), "ACTIVE or ALL")
	leaseListCmd.Flags().Int32Var(&priceDecimals, "decimals", priceDecimals, "decimals of the payment token")
	_ = leaseListCmd.MarkFlagRequired("provider-id")
}
