package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/timmy/reviewdash/internal/domain"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	t.SetStyle(style)
	return t
}

func renderStatus(w io.Writer, s domain.JobStatus) {
	phase := s.CurrentPhase
	if phase == "" {
		phase = "Not started"
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRow(table.Row{"Running", s.IsRunning})
	t.AppendRow(table.Row{"Progress", domain.FormatProgress(s)})
	t.AppendRow(table.Row{"Current Phase", phase})
	t.AppendRow(table.Row{"Reviews Generated", fmt.Sprintf("%s / %s", domain.FormatCount(s.Progress), domain.FormatCount(s.Total))})
	t.AppendRow(table.Row{"Completed", s.Completed})
	if s.Completed && len(s.FilesCreated) > 0 {
		t.AppendRow(table.Row{"Files Created", fmt.Sprintf("%d files", len(s.FilesCreated))})
	}
	t.Render()
}

func renderReviews(w io.Writer, reviews []domain.SampleReview) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Review", "Aspects", "Problems"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Number: 4, WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
	})
	for _, r := range reviews {
		t.AppendRow(table.Row{r.ReviewID, r.ReviewText, strings.Join(r.Aspects, ", "), strings.Join(r.Problems, " | ")})
	}
	t.Render()
}

func renderAspects(w io.Writer, c *domain.AspectCatalog) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Aspect", "Synonyms"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})
	for _, name := range c.Names() {
		synonyms, _ := c.Synonyms(name)
		t.AppendRow(table.Row{name, strings.Join(synonyms, ", ")})
	}
	t.AppendFooter(table.Row{"Total", fmt.Sprintf("%d aspects", c.TotalAspects)})
	t.Render()
}

// progressLine is the single-line form of a status used by watch.
func progressLine(s domain.JobStatus) string {
	phase := s.CurrentPhase
	if phase == "" {
		phase = "Not started"
	}
	line := fmt.Sprintf("%-7s %s / %s  %s", domain.FormatProgress(s), domain.FormatCount(s.Progress), domain.FormatCount(s.Total), phase)
	if s.Completed && len(s.FilesCreated) > 0 {
		line += fmt.Sprintf("  (%d files)", len(s.FilesCreated))
	}
	return line
}
