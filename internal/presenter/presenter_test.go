package presenter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nba_props/refresh/internal/models"
)

func fixtureRecords() []models.EdgeRecord {
	p := 105.0
	prob := 0.4878
	return []models.EdgeRecord{
		{
			Player: "Beta Wing", Game: "Celtics @ Knicks", StatCategory: models.StatPoints,
			Prop: "PTS O 20.0", MarketLine: 20, PredictedValue: 15, Edge: -5,
			Side: models.SideUnder, Confidence: 100, Price: &p, ImpliedProb: &prob, Book: "FanDuel",
		},
		{
			Player: "Alpha Guard", Game: "Lakers @ Suns", StatCategory: models.StatPoints,
			Prop: "PTS O 18.0", MarketLine: 18, PredictedValue: 20.5, Edge: 2.5,
			Side: models.SideOver, Confidence: 75, Book: "DraftKings",
		},
	}
}

// parseTable pulls the body cells out of a rendered markdown table.
func parseTable(t *testing.T, s string) [][]string {
	t.Helper()

	var rows [][]string
	for i, line := range strings.Split(strings.TrimSpace(s), "\n") {
		if i < 2 {
			continue // header and separator
		}
		line = strings.Trim(strings.TrimSpace(line), "|")
		var cells []string
		for _, c := range strings.Split(line, "|") {
			cells = append(cells, strings.TrimSpace(c))
		}
		rows = append(rows, cells)
	}
	return rows
}

func newPresenter(level zerolog.Level) (*Presenter, *bytes.Buffer, *bytes.Buffer) {
	logs, out := &bytes.Buffer{}, &bytes.Buffer{}
	p := New(zerolog.New(logs).Level(level), out)
	p.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return p, logs, out
}

func TestTableMatchesJSON(t *testing.T) {
	records := fixtureRecords()

	data, err := RenderJSON(records)
	require.NoError(t, err)

	var decoded []models.EdgeRecord
	require.NoError(t, json.Unmarshal(data, &decoded))

	tableRows := parseTable(t, RenderTable(records))
	require.Len(t, tableRows, len(decoded))
	assert.Equal(t, Rows(decoded), tableRows)
	assert.Len(t, tableRows[0], len(Headers))
	assert.Equal(t, []string{"Beta Wing", "Celtics @ Knicks", "PTS O 20.0", "20.0", "15.0", "-5.0", "under", "100", "FanDuel"}, tableRows[0])
}

func TestRenderJSON_Empty(t *testing.T) {
	data, err := RenderJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestPresent_Info(t *testing.T) {
	p, logs, out := newPresenter(zerolog.InfoLevel)

	data, err := p.Present(fixtureRecords())
	require.NoError(t, err)
	assert.Equal(t, string(data)+"\n", out.String())

	assert.Contains(t, logs.String(), "Beta Wing")
	assert.Contains(t, logs.String(), "Data refreshed: 2025-01-02T03:04:05Z UTC")
	assert.Contains(t, logs.String(), Disclaimer)

	var decoded []models.EdgeRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Len(t, decoded, 2)
}

func TestPresent_WarningSuppressesTableButNotJSON(t *testing.T) {
	p, logs, out := newPresenter(zerolog.WarnLevel)

	_, err := p.Present(fixtureRecords())
	require.NoError(t, err)

	assert.Empty(t, logs.String())

	var decoded []models.EdgeRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Beta Wing", decoded[0].Player)
	assert.Equal(t, -5.0, decoded[0].Edge)
}
