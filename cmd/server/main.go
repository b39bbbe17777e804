package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"fleet-assignment-service/internal/adapters/affinitystore"
	"fleet-assignment-service/internal/adapters/capacityfile"
	"fleet-assignment-service/internal/api"
	"fleet-assignment-service/internal/config"
	"fleet-assignment-service/internal/domain"
	"fleet-assignment-service/internal/platform/db"
	"fleet-assignment-service/internal/ports"
	"fleet-assignment-service/internal/services"
	"fleet-assignment-service/pkg/logger"
)

// main is the application composition root.
// It wires a concrete affinity store (file, Postgres, or Redis) behind the
// store port, builds the capacity table, and starts the HTTP server.
func main() {
	dotenvErr := godotenv.Load()

	log := logger.Init(logger.Config{
		Level:  config.Get("LOG_LEVEL", "info"),
		Format: config.Get("LOG_FORMAT", "json"),
	})
	if dotenvErr != nil {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")

	capacities := domain.DefaultCapacityTable()
	if path := config.Get("CAPACITY_TABLE_PATH", ""); path != "" {
		loaded, err := capacityfile.Load(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("could not load capacity table")
		}
		capacities = loaded
		log.Info().Str("path", path).Msg("capacity table loaded from file")
	}

	store, closeStore, err := openAffinityStore(log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open affinity store")
	}
	defer closeStore()

	tracker := services.NewAffinityTracker(context.Background(), store, log)
	router := api.NewRouter(capacities, tracker, log)

	log.Info().Str("addr", ":"+port).Msg("server listening")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server error")
	}
}

// openAffinityStore picks the durable backend: DATABASE_URL wins, then
// REDIS_ADDR, then a local JSON file.
func openAffinityStore(log zerolog.Logger) (ports.AffinityStore, func(), error) {
	if databaseURL := strings.TrimSpace(config.Get("DATABASE_URL", "")); databaseURL != "" {
		conn, err := db.Open(databaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := affinitystore.InitSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		log.Info().Msg("affinity store: postgres")
		return affinitystore.NewPostgres(conn), func() { conn.Close() }, nil
	}

	if addr := strings.TrimSpace(config.Get("REDIS_ADDR", "")); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.Get("REDIS_PASSWORD", ""),
			DB:       config.GetInt("REDIS_DB", 0),
		})
		log.Info().Str("addr", addr).Msg("affinity store: redis")
		return affinitystore.NewRedis(client), func() { client.Close() }, nil
	}

	path := config.Get("AFFINITY_PATH", "data/driver_vehicle_affinity.json")
	log.Info().Str("path", path).Msg("affinity store: file")
	return affinitystore.NewFile(path), func() {}, nil
}
