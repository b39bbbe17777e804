package affinitystore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"fleet-assignment-service/internal/domain"
	"fleet-assignment-service/internal/platform/obs"
)

// Postgres is a Postgres-backed AffinityStore for deployments where the
// affinity history must survive host replacement.
type Postgres struct {
	DB *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{DB: db}
}

// InitSchema creates the affinity table if it does not exist.
func InitSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS driver_vehicle_affinity (
		affinity_key TEXT        NOT NULL,
		vehicle_name TEXT        NOT NULL,
		service_type TEXT        NOT NULL,
		first_used   TIMESTAMPTZ NOT NULL,
		last_used    TIMESTAMPTZ NOT NULL,
		frequency    INTEGER     NOT NULL,
		routes       JSONB       NOT NULL DEFAULT '[]',
		PRIMARY KEY (affinity_key, vehicle_name)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("affinity store: init schema: %w", err)
	}
	return nil
}

// Load reads the full affinity map.
func (s *Postgres) Load(ctx context.Context) (_ map[string][]domain.AffinityEntry, err error) {
	defer obs.Time(ctx, "affinity.postgres.Load")(&err)

	if s.DB == nil {
		return nil, errors.New("affinity store: DB is nil")
	}

	query := `
	SELECT
		affinity_key,
		vehicle_name,
		service_type,
		first_used,
		last_used,
		frequency,
		routes
	FROM driver_vehicle_affinity
	ORDER BY affinity_key, vehicle_name;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load affinities: query affinity table: %w", err)
	}
	defer rows.Close()

	affinities := make(map[string][]domain.AffinityEntry)
	for rows.Next() {
		var key string
		var e domain.AffinityEntry
		var routesRaw []byte
		if err := rows.Scan(&key, &e.VehicleName, &e.ServiceType, &e.FirstUsed, &e.LastUsed, &e.Frequency, &routesRaw); err != nil {
			return nil, fmt.Errorf("load affinities: scan row: %w", err)
		}
		if err := json.Unmarshal(routesRaw, &e.Routes); err != nil {
			return nil, fmt.Errorf("load affinities: decode routes for key %q: %w", key, err)
		}
		affinities[key] = append(affinities[key], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load affinities: row iteration: %w", err)
	}

	return affinities, nil
}

// Save replaces the stored snapshot inside one transaction.
func (s *Postgres) Save(ctx context.Context, affinities map[string][]domain.AffinityEntry) (err error) {
	defer obs.Time(ctx, "affinity.postgres.Save")(&err)

	if s.DB == nil {
		return errors.New("affinity store: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save affinities: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM driver_vehicle_affinity;`); err != nil {
		return fmt.Errorf("save affinities: clear table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO driver_vehicle_affinity
		(affinity_key, vehicle_name, service_type, first_used, last_used, frequency, routes)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
	`)
	if err != nil {
		return fmt.Errorf("save affinities: db prepare: %w", err)
	}
	defer stmt.Close()

	for key, entries := range affinities {
		for _, e := range entries {
			routesRaw, err := json.Marshal(e.Routes)
			if err != nil {
				return fmt.Errorf("save affinities: encode routes for key %q: %w", key, err)
			}
			if _, err := stmt.ExecContext(ctx, key, e.VehicleName, e.ServiceType, e.FirstUsed, e.LastUsed, e.Frequency, routesRaw); err != nil {
				return fmt.Errorf("save affinities: insert key %q vehicle %q: %w", key, e.VehicleName, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save affinities: commit: %w", err)
	}
	return nil
}
