package gorm

import (
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// ScheduleEntry is one timetable row: a carrier code and a flight number
type ScheduleEntry struct {
	ID           string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	CarrierCode  string    `gorm:"column:carrier_code;type:varchar(8);not null"`
	FlightNumber string    `gorm:"column:flight_number;type:varchar(16);not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ScheduleEntry) TableName() string {
	return "schedule_entries"
}

// BeforeCreate assigns an id so the table works on both postgres and sqlite
func (e *ScheduleEntry) BeforeCreate(tx *gormlib.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}
