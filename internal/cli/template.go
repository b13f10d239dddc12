package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/setlistr/setlistr/pkg/client"
)

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage setlist templates",
	}

	cmd.AddCommand(newTemplateListCmd())
	cmd.AddCommand(newTemplateFromSetlistCmd())
	cmd.AddCommand(newTemplateInstantiateCmd())
	cmd.AddCommand(newTemplateDeleteCmd())

	return cmd
}

func newTemplateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <band-id>",
		Short: "List the templates of a band",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := apiClient.Templates().List(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list templates: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(templates)
			}

			if len(templates) == 0 {
				fmt.Println("No templates found")
				return nil
			}

			table := NewTable("ID", "NAME", "SETS", "SLOTS", "PINNED")
			for _, t := range templates {
				slots, pinned := templateCounts(t)
				table.AddRow(t.ID, truncate(t.Name, 32), strconv.Itoa(len(t.SetsConfig)), strconv.Itoa(slots), strconv.Itoa(pinned))
			}
			table.Render()
			return nil
		},
	}
}

func templateCounts(t client.Template) (slots, pinned int) {
	for _, s := range t.SetsConfig {
		slots += s.SongsPerSet
		pinned += len(s.PinnedSlots)
	}
	return slots, pinned
}

func newTemplateFromSetlistCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "from-setlist <setlist-id> <name>",
		Short: "Save the pinned slots of a setlist as a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := apiClient.Templates().FromSetlist(context.Background(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to create template: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(map[string]string{"id": id})
			}
			fmt.Printf("Template created: %s\n", id)
			return nil
		},
	}
}

func newTemplateInstantiateCmd() *cobra.Command {
	var req client.InstantiateRequest

	cmd := &cobra.Command{
		Use:   "instantiate <template-id> <setlist-name>",
		Short: "Create a setlist from a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[1]
			id, err := apiClient.Templates().Instantiate(context.Background(), args[0], req)
			if err != nil {
				return fmt.Errorf("failed to create setlist: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(map[string]string{"id": id})
			}
			fmt.Printf("Setlist created: %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Venue, "venue", "", "venue of the show")
	cmd.Flags().StringVar(&req.Date, "date", "", "date of the show (YYYY-MM-DD)")

	return cmd
}

func newTemplateDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <template-id>",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apiClient.Templates().Delete(context.Background(), args[0]); err != nil {
				return fmt.Errorf("failed to delete template: %w", err)
			}
			fmt.Printf("Template %s deleted\n", args[0])
			return nil
		},
	}
}
