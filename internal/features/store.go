package features

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/common"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/schema"

	"nba_props/refresh/internal/artifacts"
	"nba_props/refresh/internal/models"
)

// Column names in the offline-produced tables.
const (
	ColPlayerName = "PLAYER_NAME"
	ColPoints     = "PTS"
	ColRolling5   = "rolling5_pts"
)

var (
	stringTypes  = []parquet.Type{parquet.Type_BYTE_ARRAY}
	numericTypes = []parquet.Type{parquet.Type_INT32, parquet.Type_INT64, parquet.Type_FLOAT, parquet.Type_DOUBLE}
)

// column names a required column and the physical types accepted for it.
type column struct {
	name  string
	types []parquet.Type
}

// Store is the in-memory feature table, keyed by normalized player name.
type Store struct {
	rows    map[string]models.PlayerFeatureRow
	aliases Aliases
}

// Load reads the season game logs and the rolling-5 table. Either file
// missing or unreadable is fatal.
func Load(logsPath, last5Path string, aliases Aliases, logger zerolog.Logger) (*Store, error) {
	logs, err := readColumns(logsPath,
		column{ColPlayerName, stringTypes},
		column{ColPoints, numericTypes},
	)
	if err != nil {
		return nil, err
	}

	last5, err := readColumns(last5Path,
		column{ColPlayerName, stringTypes},
		column{ColRolling5, numericTypes},
	)
	if err != nil {
		return nil, err
	}

	type agg struct {
		name  string
		sum   float64
		games int
	}
	season := make(map[string]*agg)
	names, pts := logs[ColPlayerName], logs[ColPoints]
	for i := range names {
		// null cells are skipped
		if names[i] == nil || pts[i] == nil {
			continue
		}
		name, ok := toString(names[i])
		if !ok {
			return nil, artifacts.Corrupt(logsPath, fmt.Errorf("row %d: %s is %T, want string", i, ColPlayerName, names[i]))
		}
		v, ok := toFloat(pts[i])
		if !ok {
			return nil, artifacts.Corrupt(logsPath, fmt.Errorf("row %d: %s is %T, want number", i, ColPoints, pts[i]))
		}
		key := NormalizeName(name)
		if key == "" {
			continue
		}
		a, found := season[key]
		if !found {
			a = &agg{name: name}
			season[key] = a
		}
		a.sum += v
		a.games++
	}

	rolling := make(map[string]float64)
	names, roll := last5[ColPlayerName], last5[ColRolling5]
	for i := range names {
		if names[i] == nil || roll[i] == nil {
			continue
		}
		name, ok := toString(names[i])
		if !ok {
			return nil, artifacts.Corrupt(last5Path, fmt.Errorf("row %d: %s is %T, want string", i, ColPlayerName, names[i]))
		}
		v, ok := toFloat(roll[i])
		if !ok {
			return nil, artifacts.Corrupt(last5Path, fmt.Errorf("row %d: %s is %T, want number", i, ColRolling5, roll[i]))
		}
		if key := NormalizeName(name); key != "" {
			rolling[key] = v
		}
	}

	rows := make(map[string]models.PlayerFeatureRow, len(season))
	withRolling := 0
	for key, a := range season {
		seasonPts := a.sum / float64(a.games)
		row := models.PlayerFeatureRow{
			Key:         key,
			PlayerName:  a.name,
			SeasonPts:   seasonPts,
			GamesPlayed: a.games,
			Rolling5Pts: seasonPts,
		}
		if r, ok := rolling[key]; ok {
			row.Rolling5Pts = r
			row.HasRolling = true
			withRolling++
		}
		rows[key] = row
	}

	logger.Info().
		Int("players", len(rows)).
		Int("with_rolling5", withRolling).
		Str("logs", logsPath).
		Str("last5", last5Path).
		Msg("Feature tables loaded")

	return &Store{rows: rows, aliases: aliases}, nil
}

// NewStore builds a Store from prepared rows.
func NewStore(rows []models.PlayerFeatureRow, aliases Aliases) *Store {
	s := &Store{rows: make(map[string]models.PlayerFeatureRow, len(rows)), aliases: aliases}
	for _, r := range rows {
		if r.Key == "" {
			r.Key = NormalizeName(r.PlayerName)
		}
		s.rows[r.Key] = r
	}
	return s
}

// Lookup returns the feature row for an odds-feed player name.
func (s *Store) Lookup(player string) (models.PlayerFeatureRow, bool) {
	row, ok := s.rows[NormalizeName(s.aliases.Resolve(player))]
	return row, ok
}

// Len returns the number of players with features.
func (s *Store) Len() int {
	return len(s.rows)
}

// readColumns loads whole columns from a flat parquet file. Each column must
// exist with one of its accepted physical types; null cells come back nil.
func readColumns(path string, columns ...column) (out map[string][]interface{}, err error) {
	if err := artifacts.Require(path); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, artifacts.Corrupt(path, fmt.Errorf("parquet reader panic: %v", r))
		}
	}()

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, artifacts.Corrupt(path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetColumnReader(fr, 1)
	if err != nil {
		return nil, artifacts.Corrupt(path, fmt.Errorf("failed to open parquet: %w", err))
	}
	defer pr.ReadStop()

	num := pr.GetNumRows()
	root := pr.SchemaHandler.GetRootExName()
	out = make(map[string][]interface{}, len(columns))
	for _, col := range columns {
		el, ok := findColumn(pr.SchemaHandler, col.name)
		if !ok {
			return nil, artifacts.Corrupt(path, fmt.Errorf("missing column %s", col.name))
		}
		if !hasType(el.GetType(), col.types) {
			return nil, artifacts.Corrupt(path, fmt.Errorf("column %s has type %s, want one of %v", col.name, el.GetType(), col.types))
		}

		values, _, _, err := pr.ReadColumnByPath(common.ReformPathStr(root+"."+col.name), num)
		if err != nil {
			return nil, artifacts.Corrupt(path, fmt.Errorf("failed to read column %s: %w", col.name, err))
		}
		if int64(len(values)) != num {
			return nil, artifacts.Corrupt(path, fmt.Errorf("column %s has %d values, want %d", col.name, len(values), num))
		}
		out[col.name] = values
	}

	return out, nil
}

// findColumn looks up a top-level leaf column by the name written in the
// file. The reader renames footer entries to Go identifiers, so the
// external name kept by the schema handler is the one to match.
func findColumn(sh *schema.SchemaHandler, name string) (*parquet.SchemaElement, bool) {
	for i := 1; i < len(sh.SchemaElements); i++ {
		el := sh.SchemaElements[i]
		if sh.GetExName(i) == name && el.GetNumChildren() == 0 && el.Type != nil {
			return el, true
		}
	}
	return nil, false
}

func hasType(t parquet.Type, allowed []parquet.Type) bool {
	for _, a := range allowed {
		if t == a {
			return true
		}
	}
	return false
}

func toString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
