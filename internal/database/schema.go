package database

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"craftnexus/internal/config"
	"craftnexus/internal/middleware"

	"gorm.io/gorm"
)

// Schema modes accepted by DB_SCHEMA_MODE.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// schemaPlan is what ApplySchema will run for a given configuration.
type schemaPlan struct {
	mode string
	sql  bool
	auto bool
}

// SchemaStatus describes the schema plan, pending SQL versions and tables
// the application expects but the database lacks.
type SchemaStatus struct {
	Mode               string
	Environment        string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	AppliedVersions    []int
	PendingMigrations  []Migration
	MissingTables      []string
}

func productionLike(env string) bool {
	return slices.Contains([]string{"production", "prod", "staging", "stage"}, strings.ToLower(strings.TrimSpace(env)))
}

// planSchema picks between embedded SQL migrations and GORM AutoMigrate.
// Hybrid runs SQL everywhere and AutoMigrate only outside production-like
// environments, where it would hide drift between the two.
func planSchema(cfg *config.Config) (schemaPlan, error) {
	p := schemaPlan{mode: strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))}
	if p.mode == "" {
		p.mode = SchemaModeHybrid
	}
	prod := productionLike(cfg.Env)

	switch p.mode {
	case SchemaModeSQL:
		p.sql = true
	case SchemaModeHybrid:
		p.sql, p.auto = true, !prod
	case SchemaModeAuto:
		if prod && !cfg.DBAutoMigrateAllowDestructive {
			return p, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		p.auto = true
	default:
		return p, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", p.mode)
	}
	return p, nil
}

// ApplySchema brings the schema up to date according to the configured mode.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := planSchema(cfg)
	if err != nil {
		return err
	}

	if plan.sql {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if plan.auto {
		if plan.mode == SchemaModeAuto && productionLike(cfg.Env) {
			middleware.Logger.Warn("AutoMigrate enabled in a production-like environment; review schema diffs")
		}
		middleware.Logger.Info("running AutoMigrate", slog.String("mode", plan.mode), slog.String("env", cfg.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	if missing := missingTables(db.WithContext(ctx)); len(missing) > 0 {
		return fmt.Errorf("schema incomplete, missing tables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// missingTables lists tables of persistent models that do not exist. The
// legacy names (noticias, foro_hilos) come from each model's TableName.
func missingTables(db *gorm.DB) []string {
	var missing []string
	for _, m := range PersistentModels() {
		if db.Migrator().HasTable(m) {
			continue
		}
		stmt := &gorm.Statement{DB: db}
		name := fmt.Sprintf("%T", m)
		if err := stmt.Parse(m); err == nil {
			name = stmt.Schema.Table
		}
		missing = append(missing, name)
	}
	return missing
}

// GetSchemaStatus reports the plan and what is pending without changing anything.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := planSchema(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{
		Mode:               plan.mode,
		Environment:        cfg.Env,
		WillRunSQL:         plan.sql,
		WillRunAutoMigrate: plan.auto,
		MissingTables:      missingTables(db.WithContext(ctx)),
	}
	if !plan.sql {
		return status, nil
	}

	applied, err := NewMigrationStore(db).AppliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied
	status.PendingMigrations, err = pendingMigrations(applied, GetMigrations())
	if err != nil {
		return nil, err
	}
	return status, nil
}
