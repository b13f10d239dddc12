package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/setlistr/setlistr/pkg/client"
)

func newSongCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "song",
		Short: "Manage a band's song library",
	}

	cmd.AddCommand(newSongListCmd())
	cmd.AddCommand(newSongAddCmd())

	return cmd
}

func newSongListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <band-id>",
		Short: "List the songs of a band",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			songs, err := apiClient.Songs().List(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list songs: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(songs)
			}

			if len(songs) == 0 {
				fmt.Println("No songs found")
				return nil
			}

			table := NewTable("ID", "TITLE", "ARTIST", "VOCALS", "ENERGY", "KEY", "LENGTH")
			for _, s := range songs {
				table.AddRow(
					s.ID,
					truncate(s.Title, 32),
					truncate(orDash(s.Artist), 24),
					formatLevel(s.VocalIntensity),
					formatLevel(s.EnergyLevel),
					orDash(s.Key),
					formatDuration(s.DurationSeconds),
				)
			}
			table.Render()
			fmt.Printf("\n%d song(s)\n", len(songs))
			return nil
		},
	}
}

func newSongAddCmd() *cobra.Command {
	var req client.CreateSongRequest

	cmd := &cobra.Command{
		Use:   "add <band-id> <title>",
		Short: "Add a song to a band",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Title = args[1]
			id, err := apiClient.Songs().Create(context.Background(), args[0], req)
			if err != nil {
				return fmt.Errorf("failed to add song: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(map[string]string{"id": id})
			}
			fmt.Printf("Song added: %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Artist, "artist", "", "original artist")
	cmd.Flags().IntVar(&req.VocalIntensity, "vocals", 3, "vocal intensity, 1-5")
	cmd.Flags().IntVar(&req.EnergyLevel, "energy", 3, "energy level, 1-5")
	cmd.Flags().StringVar(&req.Key, "key", "", "musical key")
	cmd.Flags().IntVar(&req.Tempo, "tempo", 0, "tempo in BPM")
	cmd.Flags().IntVar(&req.DurationSeconds, "duration", 0, "length in seconds")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "free-form notes")

	return cmd
}

func songTitles(ctx context.Context, bandID string) map[string]string {
	titles := map[string]string{}
	songs, err := apiClient.Songs().List(ctx, bandID)
	if err != nil {
		return titles
	}
	for _, s := range songs {
		titles[s.ID] = s.Title
	}
	return titles
}

func slotLabel(setIndex, position int) string {
	return "set " + strconv.Itoa(setIndex+1) + " #" + strconv.Itoa(position+1)
}
