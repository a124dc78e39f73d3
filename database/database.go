package database

import (
	"fmt"
	"time"

	"innerspark/config"
	"innerspark/logger"
	"innerspark/models"
	courseModels "innerspark/models/course"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb opens the configured database, tunes the pool and runs migrations.
func ConnectDb() error {
	cfg := config.AppConfig

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return err
	}

	gormCfg := &gorm.Config{}
	if cfg.IsProduction() {
		gormCfg.Logger = gormLogger.Default.LogMode(gormLogger.Warn)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return err
	}

	Database = DbInstance{Db: db}
	logger.Log.Info("database connected", "driver", cfg.DBDriver)
	return nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
		)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.DBName), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// Migrate creates or updates every table the application uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.OTP{},
		&models.LoginTracking{},
		&models.SupportTicket{},
		&models.TicketMessage{},
		&models.Payment{},
		&models.PaymentGatewayEvent{},
		&models.AnalyticsEvent{},
		&models.Broadcast{},
		&courseModels.Course{},
		&courseModels.Module{},
		&courseModels.ModuleCompletion{},
		&courseModels.Enrollment{},
		&courseModels.Exam{},
		&courseModels.ExamQuestion{},
		&courseModels.ExamAttempt{},
		&courseModels.Certificate{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
