package features

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"nba_props/refresh/internal/artifacts"
)

type logRow struct {
	PlayerName string `parquet:"name=PLAYER_NAME, type=BYTE_ARRAY, convertedtype=UTF8"`
	Pts        int64  `parquet:"name=PTS, type=INT64"`
}

type last5Row struct {
	PlayerName string  `parquet:"name=PLAYER_NAME, type=BYTE_ARRAY, convertedtype=UTF8"`
	Rolling5   float64 `parquet:"name=rolling5_pts, type=DOUBLE"`
}

type stringPtsRow struct {
	PlayerName string `parquet:"name=PLAYER_NAME, type=BYTE_ARRAY, convertedtype=UTF8"`
	Pts        string `parquet:"name=PTS, type=BYTE_ARRAY, convertedtype=UTF8"`
}

type nullableLogRow struct {
	PlayerName *string  `parquet:"name=PLAYER_NAME, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Pts        *float64 `parquet:"name=PTS, type=DOUBLE, repetitiontype=OPTIONAL"`
}

type nullableLast5Row struct {
	PlayerName *string  `parquet:"name=PLAYER_NAME, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Rolling5   *float64 `parquet:"name=rolling5_pts, type=DOUBLE, repetitiontype=OPTIONAL"`
}

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }

func writeParquet(t *testing.T, path string, schema interface{}, rows []interface{}) {
	t.Helper()

	fw, err := local.NewLocalFileWriter(path)
	require.NoError(t, err)

	pw, err := writer.NewParquetWriter(fw, schema, 1)
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, pw.Write(r))
	}
	require.NoError(t, pw.WriteStop())
	require.NoError(t, fw.Close())
}

func writeFixtures(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	logs := filepath.Join(dir, "player_logs.parquet")
	writeParquet(t, logs, new(logRow), []interface{}{
		logRow{PlayerName: "LeBron James", Pts: 20},
		logRow{PlayerName: "LeBron James", Pts: 30},
		logRow{PlayerName: "Jayson Tatum", Pts: 27},
		logRow{PlayerName: "Nic Claxton", Pts: 12},
	})

	last5 := filepath.Join(dir, "last5.parquet")
	writeParquet(t, last5, new(last5Row), []interface{}{
		last5Row{PlayerName: "LeBron James", Rolling5: 28.4},
		last5Row{PlayerName: "Rookie Nobody", Rolling5: 9.0},
	})

	return logs, last5
}

func TestLoad_JoinsSeasonAndRolling(t *testing.T) {
	logs, last5 := writeFixtures(t)

	store, err := Load(logs, last5, Aliases{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 3, store.Len(), "players without season logs are not feature rows")

	lebron, ok := store.Lookup("LeBron James (LAL)")
	require.True(t, ok, "lookup should normalize the feed name")
	assert.Equal(t, 25.0, lebron.SeasonPts)
	assert.Equal(t, 2, lebron.GamesPlayed)
	assert.Equal(t, 28.4, lebron.Rolling5Pts)
	assert.True(t, lebron.HasRolling)

	tatum, ok := store.Lookup("Jayson Tatum")
	require.True(t, ok)
	assert.Equal(t, 27.0, tatum.Rolling5Pts, "rolling average falls back to season average")
	assert.False(t, tatum.HasRolling)

	_, ok = store.Lookup("Rookie Nobody")
	assert.False(t, ok)
}

func TestLoad_WithAliases(t *testing.T) {
	logs, last5 := writeFixtures(t)

	store, err := Load(logs, last5, Aliases{"nicolas claxton": "Nic Claxton"}, zerolog.Nop())
	require.NoError(t, err)

	row, ok := store.Lookup("Nicolas Claxton")
	require.True(t, ok)
	assert.Equal(t, "Nic Claxton", row.PlayerName)
}

func TestLoad_MissingFiles(t *testing.T) {
	logs, last5 := writeFixtures(t)
	missing := filepath.Join(t.TempDir(), "absent.parquet")

	_, err := Load(missing, last5, Aliases{}, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, artifacts.ErrMissing))

	_, err = Load(logs, missing, Aliases{}, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, artifacts.ErrMissing))
}

func TestLoad_CorruptFile(t *testing.T) {
	_, last5 := writeFixtures(t)

	garbage := filepath.Join(t.TempDir(), "garbage.parquet")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not parquet"), 0o644))

	_, err := Load(garbage, last5, Aliases{}, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, artifacts.ErrCorrupt))
	assert.False(t, errors.Is(err, artifacts.ErrMissing))
}

func TestLoad_MissingColumn(t *testing.T) {
	logs, last5 := writeFixtures(t)

	// The rolling table has no PTS column, so it cannot serve as season logs.
	_, err := Load(last5, logs, Aliases{}, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, artifacts.ErrCorrupt))
	assert.Contains(t, err.Error(), "missing column")
}

func TestNewStore(t *testing.T) {
	store := NewStore(nil, Aliases{})
	assert.Equal(t, 0, store.Len())

	_, ok := store.Lookup("Anyone")
	assert.False(t, ok)
}

func TestLoad_WrongColumnType(t *testing.T) {
	_, last5 := writeFixtures(t)

	logs := filepath.Join(t.TempDir(), "player_logs.parquet")
	writeParquet(t, logs, new(stringPtsRow), []interface{}{
		stringPtsRow{PlayerName: "LeBron James", Pts: "25"},
	})

	_, err := Load(logs, last5, Aliases{}, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, artifacts.ErrCorrupt))
	assert.Contains(t, err.Error(), "column PTS has type BYTE_ARRAY")
}

func TestLoad_NullableColumns(t *testing.T) {
	dir := t.TempDir()

	logs := filepath.Join(dir, "player_logs.parquet")
	writeParquet(t, logs, new(nullableLogRow), []interface{}{
		nullableLogRow{PlayerName: strPtr("LeBron James"), Pts: floatPtr(20)},
		nullableLogRow{PlayerName: strPtr("LeBron James"), Pts: nil},
		nullableLogRow{PlayerName: strPtr("LeBron James"), Pts: floatPtr(30)},
		nullableLogRow{PlayerName: nil, Pts: floatPtr(99)},
	})

	last5 := filepath.Join(dir, "last5.parquet")
	writeParquet(t, last5, new(nullableLast5Row), []interface{}{
		nullableLast5Row{PlayerName: strPtr("LeBron James"), Rolling5: nil},
	})

	store, err := Load(logs, last5, Aliases{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len(), "rows with a null name are skipped")

	row, ok := store.Lookup("LeBron James")
	require.True(t, ok)
	assert.Equal(t, 25.0, row.SeasonPts, "null points are not counted as games")
	assert.Equal(t, 2, row.GamesPlayed)
	assert.False(t, row.HasRolling, "a null rolling value falls back to the season average")
	assert.Equal(t, 25.0, row.Rolling5Pts)
}
