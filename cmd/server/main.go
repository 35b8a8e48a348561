package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/sobrerodas/internal/server"
	"github.com/dmitrijs2005/sobrerodas/internal/server/config"
)

func main() {

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
