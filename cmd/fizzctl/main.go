// Command fizzctl inspects the Fizz registries and registers nodes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spheronfdn/fizz-sdk-go/pkg/config"
	"github.com/spheronfdn/fizz-sdk-go/pkg/sdk"
)

type globalFlags struct {
	ConfigPath string
	Debug      bool
}

var flags globalFlags

var rootCmd = &cobra.Command{
	Use:           "fizzctl",
	Short:         "Fizz protocol command-line client",
	Long:          "fizzctl reads nodes, resources and leases from the Fizz contracts and registers nodes.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "", "YAML config file (FIZZ_* environment variables override it)")
	rootCmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "verbose logging")

	rootCmd.AddCommand(nodeCmd)
	rootCmd.AddCommand(resourceCmd)
	rootCmd.AddCommand(leaseCmd)
}

// connect loads the configuration and initializes the SDK.
func connect(ctx context.Context) (*sdk.Core, error) {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	if flags.Debug {
		cfg.Debug = true
	}
	return sdk.NewSDK(ctx, cfg)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
