package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/setlistr/setlistr/internal/domain/setlist"
	"github.com/setlistr/setlistr/internal/domain/song"
)

// Sheet is everything printed on a setlist PDF.
type Sheet struct {
	BandName string
	Setlist  *setlist.Setlist
	Songs    map[string]*song.Song
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// FileName returns a download name like "my-show-2024-05-01.pdf".
func FileName(s *setlist.Setlist) string {
	base := strings.Trim(strings.ToLower(unsafeFileChars.ReplaceAllString(s.Name, "-")), "-")
	if base == "" {
		base = "setlist"
	}
	if s.Date != "" {
		base += "-" + s.Date
	}
	return base + ".pdf"
}

// Render writes sheet as an A4 PDF: a header with band, setlist, venue and
// date, then one numbered section per set.
func Render(w io.Writer, sheet Sheet) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(sheet.Setlist.Name, true)
	pdf.SetAuthor(sheet.BandName, true)
	pdf.SetCreationDate(time.Now())
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, tr(sheet.BandName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(0, 8, tr(sheet.Setlist.Name), "", 1, "L", false, 0, "")

	if sub := subtitle(sheet.Setlist); sub != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(90, 90, 90)
		pdf.CellFormat(0, 6, tr(sub), "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	items := make([]setlist.Item, len(sheet.Setlist.Items))
	copy(items, sheet.Setlist.Items)
	setlist.SortItems(items)

	for _, cfg := range setlist.SortConfigs(sheet.Setlist.SetsConfig) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.SetFillColor(235, 235, 235)
		pdf.CellFormat(0, 8, fmt.Sprintf("Set %d", cfg.SetIndex+1), "", 1, "L", true, 0, "")

		pdf.SetFont("Helvetica", "", 11)
		for _, it := range items {
			if it.SetIndex != cfg.SetIndex {
				continue
			}
			title, artist, energy := "-", "", ""
			if it.SongID != nil {
				if s, ok := sheet.Songs[*it.SongID]; ok {
					title, artist = s.Title, s.Artist
					energy = strings.Repeat("*", s.EnergyLevel)
				}
			}
			pdf.CellFormat(10, 7, fmt.Sprintf("%d.", it.Position+1), "", 0, "R", false, 0, "")
			pdf.CellFormat(90, 7, tr(title), "", 0, "L", false, 0, "")
			pdf.CellFormat(65, 7, tr(artist), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 7, energy, "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render setlist pdf: %w", err)
	}
	return pdf.Output(w)
}

func subtitle(s *setlist.Setlist) string {
	var parts []string
	if s.Venue != "" {
		parts = append(parts, s.Venue)
	}
	if s.Date != "" {
		if d, err := time.Parse(setlist.DateLayout, s.Date); err == nil {
			parts = append(parts, d.Format("Mon, 2 Jan 2006"))
		} else {
			parts = append(parts, s.Date)
		}
	}
	return strings.Join(parts, " - ")
}
