package database

import (
	"fmt"

	"techlearn/config"
	"techlearn/logger"
	"techlearn/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
	KV KVStore
}

// Database is the global database instance
var Database DbInstance

// ConnectDb opens the configured storage medium and runs migrations.
func ConnectDb(cfg *config.Config, log *logger.Logger) error {
	switch cfg.StorageDriver {
	case "memory":
		Database = DbInstance{KV: NewMemoryKV()}
		log.Info("Using in-memory storage")
		return nil
	case "redis":
		kv, err := NewRedisKV(cfg)
		if err != nil {
			return err
		}
		Database = DbInstance{KV: kv}
		log.Info("Connected to Redis", "addr", cfg.RedisAddr)
		return nil
	}

	db, err := OpenDb(cfg)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	log.Info("Running Migrations...", "driver", cfg.StorageDriver)
	if err := RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("Migrations completed successfully.")

	Database = DbInstance{Db: db, KV: NewGormKV(db)}
	return nil
}

// OpenDb opens a gorm connection for the configured SQL driver.
func OpenDb(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StorageDriver {
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
		)
		dialector = postgres.Open(dsn)
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
		)
		dialector = mysql.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DBName)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.StorageDriver, err)
	}
	return db, nil
}

// RunMigrations performs database migrations
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.KVRecord{},
	)
}
