package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"github.com/SlavaKlkv/foodgram/internal/config"
	"github.com/SlavaKlkv/foodgram/internal/db"
	"github.com/SlavaKlkv/foodgram/internal/db/mock"
	applog "github.com/SlavaKlkv/foodgram/internal/log"
	"github.com/SlavaKlkv/foodgram/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		log.Fatalf("failed to configure logging: %v", err)
	}

	var database *gorm.DB
	if cfg.Database.UseMock {
		database, err = mock.New(context.Background())
	} else {
		database, err = db.Configure(cfg.Database)
	}
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	srv := server.New(server.Config{
		Addr:          cfg.Server.Addr,
		Database:      database,
		SiteURL:       cfg.Server.SiteURL,
		MediaRoot:     cfg.Media.Root,
		TokenSecret:   cfg.Auth.TokenSecret,
		TokenLifetime: cfg.Auth.TokenLifetime,
	})

	go func() {
		log.Printf("starting http server on %s", cfg.Server.Addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server encountered an error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh

	log.Println("shutting down http server")
	if err := srv.Stop(); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
}
