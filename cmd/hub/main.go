package main

import (
	"context"
	"log"

	"github.com/ftcpit/scoutsync/internal/hub"
	"github.com/ftcpit/scoutsync/internal/hub/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := hub.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
