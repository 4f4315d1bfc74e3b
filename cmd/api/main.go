package main

import (
	"log"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/bootstrap"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/config"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/server"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	if app.DB != nil {
		defer app.DB.Close()
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s (env=%s store=%s)", addr, cfg.Env, app.Store.Provider())

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
