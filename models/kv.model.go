package models

import (
	"time"

	"gorm.io/datatypes"
)

// KVRecord is one persisted key-value record.
type KVRecord struct {
	Key       string         `gorm:"column:record_key;primaryKey;size:400"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (KVRecord) TableName() string {
	return "kv_records"
}
