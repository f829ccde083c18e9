package main

import (
	"context"
	"net"
	"net/http"
	"os"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"pathfinder/cache"
	appconfig "pathfinder/config"
	"pathfinder/handlers"
	"pathfinder/sentry"
	"pathfinder/spotify"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warnf("Error loading .env file: %v", err)
	}
	appconfig.NewConfig()
	configureLogging()
	sentry.Init()

	if err := run(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func configureLogging() {
	log.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}
}

func run(ctx context.Context) error {
	cfg := appconfig.Config

	transport := spotify.NewPartnerTransport(cfg.Upstream.BearerToken, cfg.Upstream.Retries)
	client := spotify.NewQueryClient(transport, spotify.StaticHashes(cfg.Upstream.QueryHashes))
	client.Endpoint = cfg.Upstream.Endpoint

	var store *cache.SQLiteStore
	if cfg.Cache.DBPath != "" {
		var err error
		store, err = cache.OpenSQLiteStore(cfg.Cache.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	newCache := func(name string) *cache.Cache {
		c := cache.New(name, cfg.Cache.TTL, cfg.Cache.MaxEntries)
		if store != nil {
			c = c.WithStore(store)
		}
		return c
	}

	manager := handlers.NewManager(client, cfg.Upstream.Locale,
		newCache("track"), newCache("album"), newCache("playlist"))

	router := gin.Default()
	router.Use(sentry.GetSentryGin())

	router.GET("/track/*input", manager.GetTrack)
	router.GET("/album/*input", manager.GetAlbum)
	router.GET("/playlist/*input", manager.GetPlaylist)
	router.POST("/clear", manager.ClearCache)
	router.NoRoute(manager.Usage)

	port := cfg.Options.Port
	if port == "" {
		port = "8080"
	}
	log.Infof("Starting server on :%s", port)

	server := &http.Server{
		Addr:        ":" + port,
		Handler:     router,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	return server.ListenAndServe()
}
