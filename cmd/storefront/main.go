package main

import (
	"log"

	"storefront/internal/config"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	applog.Setup(cfg)

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	app := server.New(cfg, db)
	log.Printf("[static] /static -> %s", cfg.StaticDir)
	log.Printf("[static] /media  -> %s", cfg.MediaDir)
	applog.System("server.start", map[string]any{"port": cfg.Port})

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
