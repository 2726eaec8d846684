// Command migrate runs schema operations for the backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"craftnexus/internal/config"
	"craftnexus/internal/database"

	"github.com/jackc/pgx/v5"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate [-yes] <up|auto|status|down|tables|constraints|reset> [version|table]")
}

func run() error {
	confirm := flag.Bool("yes", false, "confirm destructive commands")
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	db, err := database.ConnectWithOptions(ctx, cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	switch cmd {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Println("sql migrations applied")
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		log.Println("automigrations applied")
	case "status":
		if err := printServerInfo(ctx, cfg); err != nil {
			return err
		}
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		log.Printf("mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d", status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate, len(status.AppliedVersions), len(status.PendingMigrations))
		for _, t := range status.MissingTables {
			log.Printf("missing table: %s", t)
		}
		for _, m := range status.PendingMigrations {
			log.Printf("pending: %06d_%s", m.Version, m.Name)
		}
	case "down":
		if flag.NArg() < 2 {
			return fmt.Errorf("usage: go run ./cmd/migrate down <version>")
		}
		version, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", flag.Arg(1), err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Printf("rolled back migration %d", version)
	case "tables":
		return printTables(ctx, cfg)
	case "constraints":
		return printConstraints(ctx, cfg, flag.Arg(1))
	case "reset":
		if cfg.Env == "production" || !*confirm {
			return fmt.Errorf("reset drops every table; rerun with -yes outside production")
		}
		if err := db.Exec("DROP SCHEMA public CASCADE; CREATE SCHEMA public; GRANT ALL ON SCHEMA public TO public;").Error; err != nil {
			return fmt.Errorf("reset schema: %w", err)
		}
		log.Println("public schema dropped and recreated")
	default:
		return usage()
	}
	return nil
}

func pgxConnect(ctx context.Context, cfg *config.Config) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, database.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("pgx connect: %w", err)
	}
	return conn, nil
}

// printTables lists application tables with their estimated row counts.
func printTables(ctx context.Context, cfg *config.Config) error {
	conn, err := pgxConnect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(context.Background()) }()

	rows, err := conn.Query(ctx, `
		SELECT c.relname, c.reltuples::bigint
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = 'public' AND c.relkind = 'r'
		ORDER BY c.relname`)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	type table struct {
		Name string
		Rows int64
	}
	tables, err := pgx.CollectRows(rows, pgx.RowToStructByPos[table])
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	for _, t := range tables {
		fmt.Printf("%-28s ~%d rows\n", t.Name, t.Rows)
	}
	return nil
}

// printConstraints lists constraints in the public schema, optionally for one table.
func printConstraints(ctx context.Context, cfg *config.Config, table string) error {
	conn, err := pgxConnect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(context.Background()) }()

	rows, err := conn.Query(ctx, `
		SELECT r.relname, c.conname, pg_get_constraintdef(c.oid)
		FROM pg_constraint c
		JOIN pg_class r ON c.conrelid = r.oid
		JOIN pg_namespace n ON n.oid = r.relnamespace
		WHERE n.nspname = 'public' AND ($1::text = '' OR r.relname = $1::text)
		ORDER BY r.relname, c.conname`, table)
	if err != nil {
		return fmt.Errorf("list constraints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rel, name, def string
		if err := rows.Scan(&rel, &name, &def); err != nil {
			return err
		}
		fmt.Printf("%s on %s: %s\n", name, rel, def)
	}
	return rows.Err()
}

// printServerInfo checks raw connectivity with pgx, bypassing the ORM pool.
func printServerInfo(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := pgxConnect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(context.Background()) }()

	var version, dbName string
	start := time.Now()
	if err := conn.QueryRow(ctx, "SELECT version(), current_database()").Scan(&version, &dbName); err != nil {
		return fmt.Errorf("pgx query: %w", err)
	}
	log.Printf("connected database=%s latency=%s server=%q", dbName, time.Since(start).Round(time.Microsecond), version)
	return nil
}
