package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// HistoryRecord is the weather_history row backing a history.Item.
type HistoryRecord struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string         `gorm:"index:idx_history_owner_ts,priority:1" json:"user_id"`
	Location    string         `gorm:"not null" json:"location"`
	Timestamp   time.Time      `gorm:"index:idx_history_owner_ts,priority:2;index" json:"timestamp"`
	WeatherData datatypes.JSON `gorm:"type:jsonb" json:"weather_data"`
	DateRange   datatypes.JSON `gorm:"type:jsonb" json:"date_range"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (HistoryRecord) TableName() string {
	return "weather_history"
}
