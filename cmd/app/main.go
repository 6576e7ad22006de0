package main

import (
	"github.com/humanbelnik/watchlist/internal/app"
	"github.com/humanbelnik/watchlist/internal/config"
)

// @title Watchlist decision API
// @version 1.0
// @description Swipe sessions that pick what a group watches tonight.
// @BasePath /api/v1
func main() {
	app.Go(config.Load())
}
