// Package export renders an account's teams and presentation records as a
// downloadable JSON document or CSV sheet.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/nextup/internal/presentation"
	"github.com/daap14/nextup/internal/team"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat maps a query value to a Format. An empty value selects CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatCSV):
		return FormatCSV, nil
	case string(FormatJSON):
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv; charset=utf-8"
}

// timestampLayout is ISO-8601 in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

const notAvailable = "N/A"

// Entry is one team together with its records, oldest first.
type Entry struct {
	Team    team.Team
	Records []presentation.Record
}

// Build pairs every team with its records. Teams keep their given order.
func Build(teams []team.Team, byTeam map[uuid.UUID][]presentation.Record) []Entry {
	entries := make([]Entry, 0, len(teams))
	for _, t := range teams {
		entries = append(entries, Entry{Team: t, Records: byTeam[t.ID]})
	}
	return entries
}

// Count returns the number of presentation entries both formats emit.
func Count(entries []Entry) int {
	n := 0
	for _, e := range entries {
		n += len(e.Records)
	}
	return n
}

// Minutes formats a duration in seconds as minutes with two decimals.
func Minutes(seconds int) string {
	return fmt.Sprintf("%.2f", float64(seconds)/60)
}

// Timestamp formats t the way both formats print dates.
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

type jsonPresentation struct {
	PresentationMinutes string `json:"presentationMinutes"`
	QAMinutes           string `json:"qaMinutes"`
	TotalMinutes        string `json:"totalMinutes"`
	PresentedAt         string `json:"presentedAt"`
}

type jsonTeam struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Topic         string             `json:"topic"`
	Members       []string           `json:"members"`
	Notes         *string            `json:"notes"`
	CreatedAt     string             `json:"createdAt"`
	Presentations []jsonPresentation `json:"presentations"`
}

// WriteJSON writes entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []Entry) error {
	out := make([]jsonTeam, 0, len(entries))
	for _, e := range entries {
		members := e.Team.Members
		if members == nil {
			members = []string{}
		}
		jt := jsonTeam{
			ID:            e.Team.ID.String(),
			Name:          e.Team.Name,
			Topic:         e.Team.Topic,
			Members:       members,
			Notes:         e.Team.Notes,
			CreatedAt:     Timestamp(e.Team.CreatedAt),
			Presentations: make([]jsonPresentation, 0, len(e.Records)),
		}
		for _, rec := range e.Records {
			jt.Presentations = append(jt.Presentations, jsonPresentation{
				PresentationMinutes: Minutes(rec.PresentationSeconds),
				QAMinutes:           Minutes(rec.QASeconds),
				TotalMinutes:        Minutes(rec.TotalSeconds()),
				PresentedAt:         Timestamp(rec.PresentedAt),
			})
		}
		out = append(out, jt)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"Team Name", "Topic", "Members", "Notes", "Created At",
	"Presentation Minutes", "Q&A Minutes", "Total Minutes", "Presented At",
}

// WriteCSV writes one row per (team, record) pair, or a single row with N/A
// timings for a team without records. Every field is quoted.
func WriteCSV(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)

	writeRow(bw, csvHeader)
	for _, e := range entries {
		notes := ""
		if e.Team.Notes != nil {
			notes = *e.Team.Notes
		}
		base := []string{
			e.Team.Name,
			e.Team.Topic,
			strings.Join(e.Team.Members, "; "),
			notes,
			Timestamp(e.Team.CreatedAt),
		}

		if len(e.Records) == 0 {
			writeRow(bw, append(base, notAvailable, notAvailable, notAvailable, notAvailable))
			continue
		}
		for _, rec := range e.Records {
			writeRow(bw, append(base[:len(base):len(base)],
				Minutes(rec.PresentationSeconds),
				Minutes(rec.QASeconds),
				Minutes(rec.TotalSeconds()),
				Timestamp(rec.PresentedAt),
			))
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

func writeRow(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteByte('\n')
}
