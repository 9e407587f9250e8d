package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"energy_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists the market registries, scalar state and event journal.
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance. An empty path resolves
// to the per-user config directory.
func NewStorage(path string) (*Storage, error) {
	dbPath := path
	if dbPath == "" {
		var err error
		dbPath, err = defaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
	}

	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(
		&domain.Producer{},
		&domain.Listing{},
		&domain.Transaction{},
		&domain.MarketState{},
		&domain.EventRecord{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// defaultDBPath resolves the database file path based on OS
func defaultDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "EnergyGo", "data", "market.db"), nil
}

// Persist writes one mutation batch in a single transaction. Either the
// entire batch lands or none of it does.
func (s *Storage) Persist(batch *domain.MutationBatch) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, p := range batch.Producers {
			if err := tx.Save(p).Error; err != nil {
				return err
			}
		}
		for _, l := range batch.Listings {
			if err := tx.Save(l).Error; err != nil {
				return err
			}
		}
		for _, t := range batch.Transactions {
			if err := tx.Save(t).Error; err != nil {
				return err
			}
		}
		if batch.State != nil {
			if err := tx.Save(batch.State).Error; err != nil {
				return err
			}
		}
		for _, ev := range batch.Events {
			if err := tx.Create(ev).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Load reads the full snapshot back, registries ordered by id so index
// lists rebuild in creation order. State is nil on first boot.
func (s *Storage) Load() (*domain.MarketSnapshot, error) {
	snap := &domain.MarketSnapshot{}

	if err := s.db.Order("address").Find(&snap.Producers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Order("id").Find(&snap.Listings).Error; err != nil {
		return nil, err
	}
	if err := s.db.Order("id").Find(&snap.Transactions).Error; err != nil {
		return nil, err
	}

	var state domain.MarketState
	err := s.db.First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return snap, nil // first boot
	}
	if err != nil {
		return nil, err
	}
	snap.State = &state
	return snap, nil
}

// Events returns journal entries with seq >= fromSeq, oldest first, capped
// at limit. Used by indexers catching up after reconnect.
func (s *Storage) Events(fromSeq uint64, limit int) ([]domain.EventRecord, error) {
	var records []domain.EventRecord
	err := s.db.Where("seq >= ?", fromSeq).Order("seq").Limit(limit).Find(&records).Error
	return records, err
}

var _ domain.MarketStore = (*Storage)(nil)
