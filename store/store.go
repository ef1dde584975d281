// Package store persists attendances, assignments and quarters.
// File: store/store.go
package store

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"lineup-board/models"
)

// Open opens the sqlite database at path and migrates the schema.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&models.Member{},
		&models.Guest{},
		&models.Team{},
		&models.Quarter{},
		&models.Attendance{},
		&models.Assignment{},
		&models.Goal{},
	); err != nil {
		return nil, err
	}
	return db, nil
}
