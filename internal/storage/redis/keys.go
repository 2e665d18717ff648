package redis

import (
	"fmt"

	"github.com/mcoot/gemtofu/internal/model"
)

// Key prefix for all gemtofu data
const keyPrefix = "gemtofu"

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gamesIndexKey returns the Redis key for the ZSET of game ids scored by
// last update time
func gamesIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}

// ledgerKey returns the Redis key for the HASH of identity -> first seen
func ledgerKey() string {
	return fmt.Sprintf("%s:ledger", keyPrefix)
}
