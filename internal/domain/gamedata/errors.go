package gamedata

import "errors"

// Sentinel kinds for game data errors.
var (
	ErrLoad = errors.New("load game data failed")
)
