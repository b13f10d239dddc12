package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/setlistr/setlistr/pkg/client"
)

func newBandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "band",
		Short: "Manage bands",
	}

	cmd.AddCommand(newBandListCmd())
	cmd.AddCommand(newBandCreateCmd())

	return cmd
}

func newBandListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your bands",
		RunE: func(cmd *cobra.Command, args []string) error {
			bands, err := apiClient.Bands().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list bands: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(bands)
			}

			if len(bands) == 0 {
				fmt.Println("No bands yet. Create one with 'setlistr band create <name>'")
				return nil
			}

			table := NewTable("ID", "NAME", "SLUG", "CREATED")
			for _, b := range bands {
				table.AddRow(b.ID, truncate(b.Name, 40), b.Slug, b.CreatedAt.Format("2006-01-02"))
			}
			table.Render()
			return nil
		},
	}
}

func newBandCreateCmd() *cobra.Command {
	var slug string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a band",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := apiClient.Bands().Create(context.Background(), client.CreateBandRequest{
				Name: args[0],
				Slug: slug,
			})
			if err != nil {
				return fmt.Errorf("failed to create band: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(map[string]string{"id": id})
			}
			fmt.Printf("Band created: %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "URL slug (derived from the name when empty)")

	return cmd
}
