package emotion

import (
	"context"
	"fmt"
	"sort"
)

// galleryColumns is the fixed partition width of the drawing gallery.
const galleryColumns = 3

// Bar is one chart bar: a code present in the data with its frequency.
type Bar struct {
	Emotion string `json:"emotion"`
	Label   string `json:"label"`
	Count   int    `json:"count"`
}

// Row is one table row with display-ready strings.
type Row struct {
	StudentName string `json:"student_name"`
	Emotion     string `json:"emotion"`
	SubmittedAt string `json:"submitted_at"`
}

// Cell is one gallery cell. HasImage is false when the record carries no
// stored URL; the cell then renders a placeholder warning instead.
type Cell struct {
	StudentName string `json:"student_name"`
	Emotion     string `json:"emotion"`
	ImageURL    string `json:"image_url,omitempty"`
	HasImage    bool   `json:"has_image"`
}

// Dashboard is the teacher view: chart, table and gallery built from one
// snapshot of all records in descending timestamp order.
type Dashboard struct {
	Total   int      `json:"total"`
	Empty   bool     `json:"empty"`
	Chart   []Bar    `json:"chart,omitempty"`
	Table   []Row    `json:"table,omitempty"`
	Gallery [][]Cell `json:"gallery,omitempty"`
}

// Dashboard fetches every record and derives the three views. Aggregation
// groups by emotion code rather than by the stored display label; the
// original tool grouped by label, which double-counts records whenever a
// label string changes, so the code is the key here and labels are attached
// afterwards.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load records: %w", err)
	}
	return buildDashboard(records), nil
}

func buildDashboard(records []Record) Dashboard {
	if len(records) == 0 {
		return Dashboard{Empty: true}
	}

	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.Emotion]++
	}
	chart := make([]Bar, 0, len(counts))
	for code, n := range counts {
		chart = append(chart, Bar{Emotion: code, Label: Code(code).Label(), Count: n})
	}
	sort.SliceStable(chart, func(i, j int) bool {
		if chart[i].Count != chart[j].Count {
			return chart[i].Count > chart[j].Count
		}
		// Unrecognized codes all rank past the taxonomy; order those by the
		// code string so equal counts always render the same way.
		if ri, rj := rank(chart[i].Emotion), rank(chart[j].Emotion); ri != rj {
			return ri < rj
		}
		return chart[i].Emotion < chart[j].Emotion
	})

	table := make([]Row, 0, len(records))
	for _, rec := range records {
		table = append(table, Row{
			StudentName: orUnknown(rec.StudentName),
			Emotion:     displayLabel(rec),
			SubmittedAt: formatTimestamp(rec),
		})
	}

	var gallery [][]Cell
	for i := 0; i < len(records); i += galleryColumns {
		end := i + galleryColumns
		if end > len(records) {
			end = len(records)
		}
		row := make([]Cell, 0, galleryColumns)
		for _, rec := range records[i:end] {
			row = append(row, Cell{
				StudentName: orUnknown(rec.StudentName),
				Emotion:     displayLabel(rec),
				ImageURL:    rec.ImageURL,
				HasImage:    rec.ImageURL != "",
			})
		}
		gallery = append(gallery, row)
	}

	return Dashboard{
		Total:   len(records),
		Chart:   chart,
		Table:   table,
		Gallery: gallery,
	}
}

// displayLabel prefers the label stored with the record, falling back to the
// label derived from its code, then to the unknown placeholder.
func displayLabel(rec Record) string {
	if rec.EmotionDisplay != "" {
		return rec.EmotionDisplay
	}
	if c := Code(rec.Emotion); c.Valid() {
		return c.Label()
	}
	return UnknownLabel
}

// formatTimestamp renders the record time, or the unknown placeholder for a
// missing timestamp; a NULL timestamp never fails the row.
func formatTimestamp(rec Record) string {
	if rec.Timestamp == nil {
		return UnknownLabel
	}
	return rec.Timestamp.Format("2006-01-02 15:04:05")
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownLabel
	}
	return s
}
