package main

import (
	"context"
	"log"

	"github.com/ftcpit/scoutsync/internal/scout"
	"github.com/ftcpit/scoutsync/internal/scout/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app, err := scout.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
