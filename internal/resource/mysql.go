package resource

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"transcription-service/ddd/infrastructure/database/po"
	"transcription-service/pkg/config"
	"transcription-service/pkg/logger"
)

// DatabaseResource owns the gorm connection used by the persistence layer.
type DatabaseResource struct {
	db *gorm.DB
}

// NewDatabaseResource opens MySQL, tunes the pool and migrates the schema.
func NewDatabaseResource(cfg config.DatabaseConfig) (*DatabaseResource, error) {
	db, err := gorm.Open(mysql.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(&po.MediaItem{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	logger.Info("database resource initialized", map[string]interface{}{
		"host":     cfg.Host,
		"database": cfg.Database,
	})
	return &DatabaseResource{db: db}, nil
}

func (r *DatabaseResource) GetDB() *gorm.DB {
	return r.db
}

// Close releases the pooled connections.
func (r *DatabaseResource) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
