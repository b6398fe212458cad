package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Migration represents a database migration
type Migration struct {
	ID   string
	Up   func(*gorm.DB) error
	Down func(*gorm.DB) error
}

var (
	mu         sync.Mutex
	migrations = make(map[string]Migration)
)

// Register adds a new migration to the registry
func Register(id string, up, down func(*gorm.DB) error) {
	mu.Lock()
	defer mu.Unlock()
	migrations[id] = Migration{
		ID:   id,
		Up:   up,
		Down: down,
	}
}

// Pending returns the ids of registered migrations not yet recorded in db
func Pending(db *gorm.DB) ([]string, error) {
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var executed []MigrationRecord
	if err := db.Find(&executed).Error; err != nil {
		return nil, fmt.Errorf("failed to get executed migrations: %w", err)
	}
	done := make(map[string]bool, len(executed))
	for _, m := range executed {
		done[m.ID] = true
	}

	mu.Lock()
	defer mu.Unlock()
	var ids []string
	for id := range migrations {
		if !done[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// RunMigrations executes all pending migrations in id order. Each migration
// runs in its own transaction together with its record.
func RunMigrations(db *gorm.DB) error {
	ids, err := Pending(db)
	if err != nil {
		return err
	}

	for _, id := range ids {
		mu.Lock()
		migration := migrations[id]
		mu.Unlock()

		logger.Info("Running migration", "id", id)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&MigrationRecord{ID: id}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to run migration %s: %w", id, err)
		}
		logger.Info("Completed migration", "id", id)
	}

	return nil
}

// MigrationRecord represents a record of executed migrations
type MigrationRecord struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt int64  `gorm:"autoCreateTime"`
}

// LoadSQLMigrations registers every .sql file in fsys as a migration named
// after the file
func LoadSQLMigrations(fsys fs.FS, dir string) error {
	files, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}
		id := strings.TrimSuffix(file.Name(), ".sql")

		content, err := fs.ReadFile(fsys, path.Join(dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
		}

		statement := string(content)
		Register(id, func(db *gorm.DB) error {
			return db.Exec(statement).Error
		}, nil) // No down migration for SQL files
	}

	return nil
}

// LoadEmbedded registers the SQL migrations shipped with the binary
func LoadEmbedded() error {
	return LoadSQLMigrations(sqlFiles, "sql")
}
