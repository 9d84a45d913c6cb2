//go:build e2e

package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/spheronfdn/fizz-sdk-go/pkg/config"
	"github.com/spheronfdn/fizz-sdk-go/pkg/sdk"
)

// TestAllNodes reads the live registry configured through FIZZ_* variables.
func TestAllNodes(t *testing.T) {
	if os.Getenv(config.EnvRPCAddr) == "" || os.Getenv(config.EnvFizzRegistry) == "" {
		t.Skip("FIZZ_RPC_ADDR and contract addresses not set")
	}
	cfg, err := config.Load(os.Getenv("FIZZ_CONFIG"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	core, err := sdk.NewSDK(ctx, cfg)
	if err != nil {
		t.Fatalf("NewSDK: %v", err)
	}
	defer core.Close()

	nodes, err := core.Fizz().AllNodes(ctx)
	if err != nil {
		t.Fatalf("AllNodes: %v", err)
	}
	for _, n := range nodes {
		got, err := core.Fizz().NodeByID(ctx, n.ID)
		if err != nil {
			t.Fatalf("NodeByID(%s): %v", n.ID, err)
		}
		if got.WalletAddress != n.WalletAddress || got.Region != n.Region {
			t.Fatalf("NodeByID(%s) = %+v, listed as %+v", n.ID, got, n)
		}
	}
}
