// Package presenter renders ranked edges as a markdown table and a JSON
// array carrying the same records.
package presenter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog"

	"nba_props/refresh/internal/models"
)

// Disclaimer closes every successful run.
const Disclaimer = "Predictions are for informational purposes only. Bet responsibly."

// Headers are the table columns, in order. price and implied_prob are
// JSON-only.
var Headers = []string{"player", "game", "prop", "line", "μ", "edge", "side", "conf", "book"}

// Presenter writes the run output. The table goes to the logger at INFO;
// the JSON array always goes to out.
type Presenter struct {
	log zerolog.Logger
	out io.Writer
	now func() time.Time
}

// New creates a Presenter. A nil out writes JSON to stdout.
func New(logger zerolog.Logger, out io.Writer) *Presenter {
	if out == nil {
		out = os.Stdout
	}
	return &Presenter{
		log: logger.With().Str("component", "presenter").Logger(),
		out: out,
		now: time.Now,
	}
}

// Present emits the table, the JSON array and the closing lines, and
// returns the JSON it wrote.
func (p *Presenter) Present(records []models.EdgeRecord) ([]byte, error) {
	if len(records) > 0 {
		p.log.Info().Msg("Top edges\n" + RenderTable(records))
	}

	data, err := RenderJSON(records)
	if err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintf(p.out, "%s\n", data); err != nil {
		return nil, fmt.Errorf("failed to write JSON output: %w", err)
	}

	p.log.Info().Msgf("Data refreshed: %s UTC", p.now().UTC().Format(time.RFC3339))
	p.log.Info().Msg(Disclaimer)

	return data, nil
}

// Rows builds the table cells for records. Floats get one decimal place.
func Rows(records []models.EdgeRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Player,
			r.Game,
			r.Prop,
			fmt.Sprintf("%.1f", r.MarketLine),
			fmt.Sprintf("%.1f", r.PredictedValue),
			fmt.Sprintf("%+.1f", r.Edge),
			string(r.Side),
			fmt.Sprintf("%d", r.Confidence),
			r.Book,
		})
	}
	return rows
}

// RenderTable renders records as a markdown table.
func RenderTable(records []models.EdgeRecord) string {
	return table.New().
		Border(lipgloss.MarkdownBorder()).
		BorderTop(false).
		BorderBottom(false).
		Headers(Headers...).
		Rows(Rows(records)...).
		String()
}

// RenderJSON renders records as an indented JSON array. An empty input
// renders as [].
func RenderJSON(records []models.EdgeRecord) ([]byte, error) {
	if records == nil {
		records = []models.EdgeRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal edges: %w", err)
	}
	return data, nil
}
