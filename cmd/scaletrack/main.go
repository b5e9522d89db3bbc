package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	adapthttp "scaletrack/internal/adapter/http"
	"scaletrack/internal/adapter/postgres"
	"scaletrack/internal/app"
)

func main() {
	addr := env("ADDR", ":8080")
	webDir := env("WEB_DIR", "web")

	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := postgres.Open(connStr)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = db.Close() }()

	sessionRepo := postgres.NewSessionRepo(db)

	tracker := app.NewGoalTracker(db, db)
	entrySvc := app.NewEntryService(db, db, tracker)
	goalSvc := app.NewGoalService(db, db)
	trendSvc := app.NewTrendService(db, db)
	authSvc := app.NewAuthService(db, sessionRepo)

	var oidcConfig *adapthttp.OIDCConfig
	if issuer := os.Getenv("OIDC_ISSUER"); issuer != "" {
		oidcConfig, err = adapthttp.NewOIDCConfig(
			context.Background(),
			issuer,
			os.Getenv("OIDC_CLIENT_ID"),
			os.Getenv("OIDC_CLIENT_SECRET"),
			os.Getenv("OIDC_REDIRECT_URL"),
		)
		if err != nil {
			log.Fatalf("oidc setup: %v", err)
		}
	}

	feed, err := postgres.NewChangeFeed(connStr)
	if err != nil {
		log.Fatalf("change feed: %v", err)
	}
	defer func() { _ = feed.Close() }()
	go func() {
		for ev := range feed.Events() {
			log.Printf("change: user=%d %s %s %s", ev.UserID, ev.Table, ev.Op, ev.ID)
		}
	}()

	h := adapthttp.New(entrySvc, goalSvc, trendSvc, authSvc, oidcConfig, webDir).Handler()
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
