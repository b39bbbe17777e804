package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"fleet-assignment-service/internal/adapters/affinitystore"
	"fleet-assignment-service/internal/config"
	"fleet-assignment-service/internal/platform/db"
	"fleet-assignment-service/internal/ports"
	"fleet-assignment-service/internal/services"
	"fleet-assignment-service/pkg/logger"
)

// Maintenance tool for the driver-vehicle affinity store: purge stale
// pairings or print a driver's history. Uses the same backend selection as
// the server (DATABASE_URL, then REDIS_ADDR, then the affinity file).
func main() {
	purgeDays := flag.Int("purge-days", 0, "remove affinities last used more than this many days ago")
	driver := flag.String("driver", "", "print the affinity summary for this driver")
	flag.Parse()

	if *purgeDays == 0 && *driver == "" {
		fmt.Fprintln(os.Stderr, "usage: affinitytool [-purge-days N] [-driver NAME]")
		os.Exit(2)
	}

	_ = godotenv.Load()
	log := logger.Init(logger.Config{
		Level:  config.Get("LOG_LEVEL", "info"),
		Format: "console",
	})

	store, closeStore, err := openStore()
	if err != nil {
		log.Fatal().Err(err).Msg("could not open affinity store")
	}
	defer closeStore()

	ctx := context.Background()
	tracker := services.NewAffinityTracker(ctx, store, log)

	if *purgeDays > 0 {
		removed := tracker.PurgeOlderThan(ctx, *purgeDays)
		fmt.Printf("removed %d stale affinity entries (older than %d days)\n", removed, *purgeDays)
	}

	if *driver != "" {
		pairings := tracker.DriverSummary(*driver)
		if len(pairings) == 0 {
			fmt.Printf("no affinity history for %s\n", *driver)
			return
		}
		fmt.Printf("affinity history for %s:\n", *driver)
		for _, p := range pairings {
			fmt.Printf("  %-30s %-45s freq=%-3d routes=%-3d last=%s\n",
				p.VehicleName, p.ServiceType, p.Frequency, p.RouteCount, p.LastUsed.Format("2006-01-02"))
		}
	}
}

func openStore() (ports.AffinityStore, func(), error) {
	if databaseURL := strings.TrimSpace(config.Get("DATABASE_URL", "")); databaseURL != "" {
		conn, err := db.Open(databaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := affinitystore.InitSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return affinitystore.NewPostgres(conn), func() { conn.Close() }, nil
	}

	if addr := strings.TrimSpace(config.Get("REDIS_ADDR", "")); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.Get("REDIS_PASSWORD", ""),
			DB:       config.GetInt("REDIS_DB", 0),
		})
		return affinitystore.NewRedis(client), func() { client.Close() }, nil
	}

	path := config.Get("AFFINITY_PATH", "data/driver_vehicle_affinity.json")
	return affinitystore.NewFile(path), func() {}, nil
}
