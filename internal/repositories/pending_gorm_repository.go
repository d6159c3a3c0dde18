package repositories

import (
	"context"
	"fmt"

	"tokodash/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase connects to sqlite or postgres.
func OpenDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return db, nil
}

// Migrate creates the tables the moderation queue reads from.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.WishlistEntry{},
		&models.Comment{},
		&models.Correction{},
		&models.DecisionEvent{},
	); err != nil {
		return fmt.Errorf("failed to migrate moderation tables: %w", err)
	}
	return nil
}

// GORMPendingSource is a GORM implementation of PendingItemSource.
type GORMPendingSource struct {
	db *gorm.DB
}

// NewGORMPendingSource creates a new instance of GORMPendingSource.
func NewGORMPendingSource(db *gorm.DB) *GORMPendingSource {
	return &GORMPendingSource{db: db}
}

// LoadPending reads pending comments, corrections and orders plus every wishlist entry.
func (r *GORMPendingSource) LoadPending(ctx context.Context) (*PendingItems, error) {
	db := r.db.WithContext(ctx)
	items := &PendingItems{}

	if err := db.Where("status = ?", "pending").Order("id").Find(&items.Comments).Error; err != nil {
		return nil, fmt.Errorf("failed to load pending comments: %w", err)
	}
	if err := db.Where("status = ?", "pending").Order("id").Find(&items.Corrections).Error; err != nil {
		return nil, fmt.Errorf("failed to load pending corrections: %w", err)
	}
	if err := db.Preload("User").Preload("Product").
		Where("status = ?", models.OrderPending).Order("id").Find(&items.Orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load pending orders: %w", err)
	}
	if err := db.Preload("User").Preload("Product").Order("id").Find(&items.Wishlist).Error; err != nil {
		return nil, fmt.Errorf("failed to load wishlist entries: %w", err)
	}
	return items, nil
}

// Seed inserts items, creating referenced users and products first.
func Seed(ctx context.Context, db *gorm.DB, items PendingItems) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(items.Comments) > 0 {
			if err := tx.Create(&items.Comments).Error; err != nil {
				return fmt.Errorf("failed to seed comments: %w", err)
			}
		}
		if len(items.Corrections) > 0 {
			if err := tx.Create(&items.Corrections).Error; err != nil {
				return fmt.Errorf("failed to seed corrections: %w", err)
			}
		}
		for i := range items.Orders {
			if err := tx.Create(&items.Orders[i]).Error; err != nil {
				return fmt.Errorf("failed to seed order %d: %w", items.Orders[i].ID, err)
			}
		}
		for i := range items.Wishlist {
			if err := tx.Create(&items.Wishlist[i]).Error; err != nil {
				return fmt.Errorf("failed to seed wishlist entry %d: %w", items.Wishlist[i].ID, err)
			}
		}
		return nil
	})
}
