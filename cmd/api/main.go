package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yt-gallery/internal/api"
	"github.com/yt-gallery/internal/config"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if level < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	// Credentials are passed on unvalidated; the search call reports the failure
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Warn("incomplete YouTube configuration")
	}

	factory := api.SearcherFactory(
		api.WithEndpoint(cfg.YouTubeAPIURL),
		api.WithTimeout(cfg.YouTubeTimeout),
		api.WithLogger(log),
	)

	server, err := api.NewServer(cfg, factory, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create server")
	}

	log.WithFields(logrus.Fields{
		"port":       cfg.Port,
		"channel_id": cfg.YouTubeChannelID,
		"pagination": cfg.PaginationMode,
		"overlap":    cfg.OverlapPolicy,
	}).Info("server starting")
	if err := server.Start(cfg.Port); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}
