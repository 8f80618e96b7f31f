package models

import (
	"fmt"
	"strings"
	"time"
)

// StatPoints is the only stat category the refresh job scores today.
const StatPoints = "player_points"

// PropLine is one player prop as posted by a single bookmaker. Over and
// Under outcomes for the same player and line are merged into one line.
type PropLine struct {
	EventID      string    `json:"event_id"`
	Player       string    `json:"player"`
	StatCategory string    `json:"stat_category"`
	Line         float64   `json:"line"`
	OverPrice    *float64  `json:"over_price,omitempty"`
	UnderPrice   *float64  `json:"under_price,omitempty"`
	BookKey      string    `json:"book_key"`
	BookTitle    string    `json:"book"`
	Game         string    `json:"game"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Key identifies a prop for de-duplication.
func (p PropLine) Key() string {
	return fmt.Sprintf("%s|%.2f|%s", p.Player, p.Line, p.Game)
}

// EventInput is an event from the /events endpoint
type EventInput struct {
	ID           string    `json:"id"`
	SportKey     string    `json:"sport_key"`
	SportTitle   string    `json:"sport_title"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
}

// GameLabel returns the "Away @ Home" label used in output.
func (e EventInput) GameLabel() string {
	return fmt.Sprintf("%s @ %s", e.AwayTeam, e.HomeTeam)
}

// EventOddsInput is the response from /events/{id}/odds
type EventOddsInput struct {
	EventInput
	Bookmakers []BookmakerInput `json:"bookmakers"`
}

// BookmakerInput represents a bookmaker block in an odds response
type BookmakerInput struct {
	Key        string        `json:"key"`
	Title      string        `json:"title"`
	LastUpdate time.Time     `json:"last_update"`
	Markets    []MarketInput `json:"markets"`
}

// MarketInput represents a single market offered by a bookmaker
type MarketInput struct {
	Key        string         `json:"key"`
	LastUpdate time.Time      `json:"last_update"`
	Outcomes   []OutcomeInput `json:"outcomes"`
}

// OutcomeInput is one side of a prop. For player props Name is
// "Over"/"Under" and Description carries the player.
type OutcomeInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Point       *float64 `json:"point"`
}

// ToPropLines converts the first bookmaker carrying market into PropLines.
// Outcomes without a player or a point are ignored.
func (eo *EventOddsInput) ToPropLines(market string, fetchedAt time.Time) []PropLine {
	for _, bk := range eo.Bookmakers {
		var m *MarketInput
		for i := range bk.Markets {
			if bk.Markets[i].Key == market {
				m = &bk.Markets[i]
				break
			}
		}
		if m == nil {
			continue
		}

		var lines []PropLine
		index := make(map[string]int)
		for _, o := range m.Outcomes {
			player := strings.TrimSpace(o.Description)
			if player == "" || o.Point == nil {
				continue
			}

			key := fmt.Sprintf("%s|%.2f", player, *o.Point)
			i, ok := index[key]
			if !ok {
				lines = append(lines, PropLine{
					EventID:      eo.ID,
					Player:       player,
					StatCategory: market,
					Line:         *o.Point,
					BookKey:      bk.Key,
					BookTitle:    bk.Title,
					Game:         eo.GameLabel(),
					HomeTeam:     eo.HomeTeam,
					AwayTeam:     eo.AwayTeam,
					CommenceTime: eo.CommenceTime,
					FetchedAt:    fetchedAt,
				})
				i = len(lines) - 1
				index[key] = i
			}

			price := o.Price
			switch strings.ToLower(o.Name) {
			case "over":
				lines[i].OverPrice = &price
			case "under":
				lines[i].UnderPrice = &price
			}
		}
		return lines
	}
	return nil
}

// DedupePropLines drops repeated player/line/game combinations, keeping
// the first occurrence.
func DedupePropLines(lines []PropLine) []PropLine {
	seen := make(map[string]struct{}, len(lines))
	out := make([]PropLine, 0, len(lines))
	for _, l := range lines {
		k := l.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, l)
	}
	return out
}
