package models

// PlayerFeatureRow holds the pre-computed statistics for one player,
// keyed by the normalized player name.
type PlayerFeatureRow struct {
	Key         string  `json:"key"`
	PlayerName  string  `json:"player_name"`
	SeasonPts   float64 `json:"season_pts"`
	GamesPlayed int     `json:"games_played"`

	// Rolling5Pts falls back to SeasonPts when the rolling table has no
	// entry for the player; HasRolling records which case applied.
	Rolling5Pts float64 `json:"rolling5_pts"`
	HasRolling  bool    `json:"has_rolling"`
}
