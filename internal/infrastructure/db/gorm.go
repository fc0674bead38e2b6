package db

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenGorm connects and verifies the pool. Query logging is verbose outside
// production.
func OpenGorm(dsn string, production bool, log *logrus.Logger) (*gorm.DB, error) {
	mode := logger.Info
	if production {
		mode = logger.Warn
	}
	gdb, err := OpenGormWithDialector(mysql.Open(dsn), mode)
	if err != nil {
		return nil, err
	}
	log.Info("gorm: connected")
	return gdb, nil
}

// OpenGormWithDialector opens a gorm session over any dialector, tunes the
// pool and pings it. Split out so tests can inject a mocked *sql.DB.
func OpenGormWithDialector(dial gorm.Dialector, mode logger.LogLevel) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(mode),
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}
