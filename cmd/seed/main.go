// Command seed loads a demo strata scheme into a Postgres database that the
// server has already migrated. Running it twice leaves the data unchanged.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/infrastructure/config"
	"strata-portal/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type seedUser struct {
	name      string
	email     string
	role      models.UserRole
	committee string
	unit      string
}

var (
	demoUnits = []struct {
		unit        string
		lot         string
		entitlement int
	}{
		{"1", "1", 40}, {"2", "2", 40}, {"3", "3", 55}, {"4", "4", 55}, {"5", "5", 70}, {"PH", "6", 90},
	}

	demoUsers = []seedUser{
		{name: "Morgan Lee", email: "manager@strata.local", role: models.RoleManager},
		{name: "Sam Okafor", email: "maintenance@strata.local", role: models.RoleMaintenanceStaff},
		{name: "Priya Nair", email: "priya@strata.local", role: models.RoleResident, committee: models.CommitteeChairperson, unit: "3"},
		{name: "Tom Becker", email: "tom@strata.local", role: models.RoleResident, committee: models.CommitteeTreasurer, unit: "5"},
		{name: "Ana Silva", email: "ana@strata.local", role: models.RoleResident, unit: "1"},
	}
)

func main() {
	password := flag.String("password", "password123", "password for every demo user")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.GetConfig()
	if err := logger.SetupLogger(logger.Options{Level: "info", Format: "console", Service: "strata-seed"}); err != nil {
		fmt.Printf("failed to set up logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.DBDriver != "postgres" {
		logger.L().Fatal("seed supports postgres only", zap.String("driver", cfg.DBDriver))
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		logger.L().Fatal("cannot open database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		logger.L().Fatal("cannot reach database", zap.Error(err))
	}

	if err := seed(ctx, db, *password); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			logger.L().Fatal("seed failed", zap.String("pg_code", string(pqErr.Code)), zap.String("detail", pqErr.Detail), zap.Error(err))
		}
		logger.L().Fatal("seed failed", zap.Error(err))
	}
	logger.Info("demo data ready; users log in with the -password value")
}

func seed(ctx context.Context, db *sql.DB, password string) error {
	hashed, err := models.HashPassword(password)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	buildingID, err := ensureBuilding(ctx, tx, "Harbourview Residences", "12 Wharf Street, Sydney NSW 2000", "SP12345")
	if err != nil {
		return fmt.Errorf("building: %w", err)
	}

	units := make(map[string]int64, len(demoUnits))
	for _, u := range demoUnits {
		id, err := ensureProperty(ctx, tx, buildingID, u.unit, u.lot, u.entitlement)
		if err != nil {
			return fmt.Errorf("property %s: %w", u.unit, err)
		}
		units[u.unit] = id
	}

	var residentID int64
	for _, u := range demoUsers {
		var propertyID sql.NullInt64
		if u.unit != "" {
			propertyID = sql.NullInt64{Int64: units[u.unit], Valid: true}
		}
		id, err := ensureUser(ctx, tx, u, hashed, propertyID)
		if err != nil {
			return fmt.Errorf("user %s: %w", u.email, err)
		}
		if u.email == "ana@strata.local" {
			residentID = id
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO maintenance_requests (title, description, status, priority, category, requester_id, property_id, image_urls, created_at, updated_at)
		SELECT $1, $2, 'pending', 'high', 'plumbing', $3, $4, '[]', NOW(), NOW()
		WHERE NOT EXISTS (SELECT 1 FROM maintenance_requests WHERE requester_id = $3 AND title = $1)`,
		"Leaking kitchen tap", "The kitchen mixer drips constantly, even when fully closed.", residentID, units["1"],
	); err != nil {
		return fmt.Errorf("maintenance request: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO announcements (title, content, type, pinned, building_id, created_at, updated_at)
		SELECT $1, $2, 'meeting', TRUE, $3, NOW(), NOW()
		WHERE NOT EXISTS (SELECT 1 FROM announcements WHERE title = $1 AND building_id = $3)`,
		"Annual general meeting", "The AGM is held in the ground floor common room. Proxy forms are available from the manager.", buildingID,
	); err != nil {
		return fmt.Errorf("announcement: %w", err)
	}

	return tx.Commit()
}

func ensureBuilding(ctx context.Context, tx *sql.Tx, name, address, plan string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM buildings WHERE strata_plan = $1`, plan).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO buildings (name, address, strata_plan, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id`, name, address, plan).Scan(&id)
	return id, err
}

func ensureProperty(ctx context.Context, tx *sql.Tx, buildingID int64, unit, lot string, entitlement int) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM properties WHERE building_id = $1 AND unit_number = $2`, buildingID, unit).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO properties (unit_number, lot_number, unit_entitlement, building_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id`, unit, lot, entitlement, buildingID).Scan(&id)
	return id, err
}

func ensureUser(ctx context.Context, tx *sql.Tx, u seedUser, hashedPassword string, propertyID sql.NullInt64) (int64, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (name, email, role, committee_position, status, password, property_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'active', $5, $6, NOW(), NOW())
		ON CONFLICT (email) DO NOTHING`,
		u.name, u.email, string(u.role), u.committee, hashedPassword, propertyID,
	); err != nil {
		return 0, err
	}

	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE email = $1`, u.email).Scan(&id)
	return id, err
}
