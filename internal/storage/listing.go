package storage

import (
	"sort"

	"github.com/mcoot/gemtofu/internal/model"
)

// SortByRecency orders games most recently updated first, breaking ties by id
// so listings are stable
func SortByRecency(games []*model.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].UpdatedAt.Equal(games[j].UpdatedAt) {
			return games[i].ID < games[j].ID
		}
		return games[i].UpdatedAt.After(games[j].UpdatedAt)
	})
}

// Limit truncates games to at most limit entries; limit <= 0 means no limit
func Limit(games []*model.Game, limit int) []*model.Game {
	if limit > 0 && len(games) > limit {
		return games[:limit]
	}
	return games
}
