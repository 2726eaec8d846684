package database

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"craftnexus/internal/middleware"

	"gorm.io/gorm"
)

// MigrationLog is one row of migration_logs.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (MigrationLog) TableName() string { return "migration_logs" }

// MigrationStore reads and writes migration_logs.
type MigrationStore struct {
	db *gorm.DB
}

func NewMigrationStore(db *gorm.DB) *MigrationStore {
	return &MigrationStore{db: db}
}

// AppliedVersions lists recorded versions in ascending order. A database
// that never ran a migration has no log table and reports none.
func (s *MigrationStore) AppliedVersions(ctx context.Context) ([]int, error) {
	versions := []int{}
	if !s.db.Migrator().HasTable(&MigrationLog{}) {
		return versions, nil
	}
	err := s.db.WithContext(ctx).Model(&MigrationLog{}).Order("version").Pluck("version", &versions).Error
	if err != nil {
		return nil, fmt.Errorf("read migration_logs: %w", err)
	}
	return versions, nil
}

// Apply runs the up script and records it atomically.
func (s *MigrationStore) Apply(ctx context.Context, m Migration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.UpScript).Error; err != nil {
			return fmt.Errorf("apply %s: %w", m.String(), err)
		}
		return tx.Create(&MigrationLog{Version: m.Version, Name: m.Name}).Error
	})
}

// Revert runs the down script and drops the log row atomically.
func (s *MigrationStore) Revert(ctx context.Context, m Migration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return fmt.Errorf("revert %s: %w", m.String(), err)
		}
		return tx.Delete(&MigrationLog{}, "version = ?", m.Version).Error
	})
}

// pendingMigrations returns the registered migrations missing from applied.
// A recorded version this build does not know means the database was
// migrated by a newer or foreign build, and nothing is run.
func pendingMigrations(applied []int, registered []Migration) ([]Migration, error) {
	known := make(map[int]bool, len(registered))
	for _, m := range registered {
		known[m.Version] = true
	}
	var foreign []string
	for _, v := range applied {
		if !known[v] {
			foreign = append(foreign, fmt.Sprintf("%06d", v))
		}
	}
	if len(foreign) > 0 {
		slices.Sort(foreign)
		return nil, fmt.Errorf("migration_logs has versions this build does not ship: %s (reset the database with `migrate reset`)",
			strings.Join(foreign, ", "))
	}

	var pending []Migration
	for _, m := range registered {
		if !slices.Contains(applied, m.Version) {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// RunMigrations applies every embedded migration not yet in migration_logs.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return fmt.Errorf("create migration_logs: %w", err)
	}
	store := NewMigrationStore(db)
	applied, err := store.AppliedVersions(ctx)
	if err != nil {
		return err
	}
	pending, err := pendingMigrations(applied, migrations)
	if err != nil {
		return err
	}

	for _, m := range pending {
		start := time.Now()
		if err := store.Apply(ctx, m); err != nil {
			return err
		}
		middleware.Logger.Info("migration applied",
			slog.String("migration", m.String()), slog.Duration("took", time.Since(start)))
	}
	return nil
}

// RollbackMigration reverts one applied version.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("no migration with version %d", version)
	}
	applied, err := NewMigrationStore(db).AppliedVersions(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(applied, version) {
		return fmt.Errorf("migration %s is not applied", m.String())
	}
	if err := NewMigrationStore(db).Revert(ctx, *m); err != nil {
		return err
	}
	middleware.Logger.Info("migration rolled back", slog.String("migration", m.String()))
	return nil
}
