package snapshots

import (
	"fmt"
	"path/filepath"
)

// The archive mirrors the feed's URL layout so a directory can be served back as a feed.

// GameDir is the directory holding every archived play of a game.
func GameDir(basePath, gameID string) string {
	return filepath.Join(basePath, gameID)
}

// PlayPath builds the path to one archived play payload.
func PlayPath(basePath, gameID string, play int) string {
	return filepath.Join(GameDir(basePath, gameID), fmt.Sprintf("play%d.json", play))
}

// LatestPath builds the path to the archived latest-play index.
func LatestPath(basePath, gameID string) string {
	return filepath.Join(GameDir(basePath, gameID), "latest.json")
}
