package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spheronfdn/fizz-sdk-go/pkg/model"
)

var resourceCmd = &cobra.Command{
	Use:   "resource",
	Short: "Query the CPU and GPU resource registries",
}

var resourceCategory string

var resourceGetCmd = &cobra.Command{
	Use:   "get <resource-id>",
	Short: "Show a catalogued resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("resource id", args[0])
		if err != nil {
			return err
		}
		category, err := parseCategory(resourceCategory)
		if err != nil {
			return err
		}
		core, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer core.Close()

		r, err := core.Fizz().Resource(cmd.Context(), id, category)
		if err != nil {
			return friendly(err)
		}
		return printJSON(cmd.OutOrStdout(), r)
	},
}

func parseCategory(raw string) (model.Category, error) {
	switch c := model.Category(strings.ToUpper(raw)); c {
	case model.CategoryCPU, model.CategoryGPU:
		return c, nil
	default:
		return "", fmt.Errorf("invalid category %q, want CPU or GPU", raw)
	}
}

func init() {
	resourceCmd.AddCommand(resourceGetCmd)
	resourceGetCmd.Flags().StringVar(&resourceCategory, "category", string(model.CategoryCPU), "registry to read: CPU or GPU")
}
