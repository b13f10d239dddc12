package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSetlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setlist",
		Short: "View setlists",
	}

	cmd.AddCommand(newSetlistListCmd())
	cmd.AddCommand(newSetlistShowCmd())

	return cmd
}

func newSetlistListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <band-id>",
		Short: "List the setlists of a band",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setlists, err := apiClient.Setlists().List(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list setlists: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(setlists)
			}

			if len(setlists) == 0 {
				fmt.Println("No setlists found")
				return nil
			}

			table := NewTable("ID", "NAME", "VENUE", "DATE", "SETS")
			for _, s := range setlists {
				table.AddRow(s.ID, truncate(s.Name, 32), truncate(orDash(s.Venue), 24), orDash(s.Date), strconv.Itoa(len(s.SetsConfig)))
			}
			table.Render()
			return nil
		},
	}
}

func newSetlistShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <setlist-id>",
		Short: "Show a setlist slot by slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			setlist, err := apiClient.Setlists().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get setlist: %w", err)
			}
			if setlist == nil {
				return fmt.Errorf("setlist %s not found", args[0])
			}

			if getOutputFormat() != "table" {
				return printOutput(setlist)
			}

			fmt.Printf("%s\n", setlist.Name)
			if setlist.Venue != "" || setlist.Date != "" {
				fmt.Printf("%s  %s\n", orDash(setlist.Venue), orDash(setlist.Date))
			}
			fmt.Println()

			titles := songTitles(ctx, setlist.BandID)
			table := NewTable("SLOT", "SONG", "PINNED")
			for _, item := range setlist.Items {
				song := "(empty)"
				if item.SongID != nil {
					song = titles[*item.SongID]
					if song == "" {
						song = *item.SongID
					}
				}
				pinned := ""
				if item.IsPinned {
					pinned = "yes"
				}
				table.AddRow(slotLabel(item.SetIndex, item.Position), truncate(song, 40), pinned)
			}
			table.Render()
			return nil
		},
	}
}
