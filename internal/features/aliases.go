package features

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"nba_props/refresh/internal/artifacts"
)

// Aliases maps a normalized odds-feed name to the name used in the stats
// tables, for players the two sources spell differently.
//
// The file is a flat YAML map:
//
//	"Nicolas Claxton": "Nic Claxton"
//	"Herbert Jones": "Herb Jones"
type Aliases map[string]string

// LoadAliases reads the alias file. A missing file yields an empty map.
func LoadAliases(path string) (Aliases, error) {
	if path == "" {
		return Aliases{}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Aliases{}, nil
	}
	if err != nil {
		return nil, artifacts.Corrupt(path, err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, artifacts.Corrupt(path, fmt.Errorf("failed to parse aliases: %w", err))
	}

	aliases := make(Aliases, len(raw))
	for feedName, statsName := range raw {
		key := NormalizeName(feedName)
		if key == "" || statsName == "" {
			continue
		}
		aliases[key] = statsName
	}

	return aliases, nil
}

// Resolve returns the stats-table name for a feed name, or the name itself.
func (a Aliases) Resolve(name string) string {
	if statsName, ok := a[NormalizeName(name)]; ok {
		return statsName
	}
	return name
}
