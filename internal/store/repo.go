package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/i474232898/weather-lookup/internal/history"
)

// Repo is the gorm-backed history.Repository.
type Repo struct {
	db *gorm.DB
}

var _ history.Repository = (*Repo)(nil)

func OpenPostgres(user, password, dbName, host, port, sslMode string) (*gorm.DB, error) {
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC", host, user, password, dbName, port, sslMode)
	return OpenPostgresDSN(dsn)
}

func OpenPostgresDSN(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// OpenSQLite opens a SQLite database; path may be a file or a "file:...?mode=memory" DSN.
func OpenSQLite(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{})
}

func New(db *gorm.DB) (*Repo, error) {
	if err := db.AutoMigrate(&HistoryRecord{}); err != nil {
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Insert(ctx context.Context, item history.Item) (string, error) {
	rec, err := toRecord(item)
	if err != nil {
		return "", err
	}
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()

	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return "", err
	}
	return rec.ID.String(), nil
}

func (r *Repo) List(ctx context.Context, ownerID string) ([]history.Item, error) {
	q := r.db.WithContext(ctx).Model(&HistoryRecord{})
	if ownerID != "" {
		q = q.Where(clause.Eq{Column: clause.Column{Name: "user_id"}, Value: ownerID})
	}

	var rows []HistoryRecord
	err := q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: "timestamp"}, Desc: true},
		{Column: clause.Column{Name: "created_at"}, Desc: true},
	}}).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]history.Item, 0, len(rows))
	for _, row := range rows {
		item, err := fromRecord(row)
		if err != nil {
			return nil, fmt.Errorf("decode history row %s: %w", row.ID, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *Repo) Update(ctx context.Context, id string, patch history.Patch) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return history.ErrNotFound
	}

	updates := map[string]interface{}{}
	if patch.Location != nil {
		updates["location"] = *patch.Location
	}
	if patch.Timestamp != nil {
		updates["timestamp"] = patch.Timestamp.UTC()
	}
	if patch.WeatherData != nil {
		b, err := json.Marshal(patch.WeatherData)
		if err != nil {
			return fmt.Errorf("encode weather data: %w", err)
		}
		updates["weather_data"] = datatypes.JSON(b)
	}
	if patch.DateRange != nil {
		b, err := json.Marshal(patch.DateRange)
		if err != nil {
			return fmt.Errorf("encode date range: %w", err)
		}
		updates["date_range"] = datatypes.JSON(b)
	}

	if len(updates) == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&HistoryRecord{}).Where("id = ?", uid).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return history.ErrNotFound
		}
		return nil
	}

	res := r.db.WithContext(ctx).Model(&HistoryRecord{}).Where("id = ?", uid).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return history.ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		// no row can have this id
		return nil
	}
	return r.db.WithContext(ctx).Delete(&HistoryRecord{}, "id = ?", uid).Error
}

func (r *Repo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("timestamp < ?", cutoff.UTC()).Delete(&HistoryRecord{})
	return res.RowsAffected, res.Error
}

func toRecord(item history.Item) (HistoryRecord, error) {
	wd, err := json.Marshal(item.WeatherData)
	if err != nil {
		return HistoryRecord{}, fmt.Errorf("encode weather data: %w", err)
	}
	rec := HistoryRecord{
		UserID:      item.UserID,
		Location:    item.Location,
		Timestamp:   item.Timestamp.UTC(),
		WeatherData: datatypes.JSON(wd),
	}
	if item.DateRange != nil {
		dr, err := json.Marshal(item.DateRange)
		if err != nil {
			return HistoryRecord{}, fmt.Errorf("encode date range: %w", err)
		}
		rec.DateRange = datatypes.JSON(dr)
	}
	return rec, nil
}

func fromRecord(rec HistoryRecord) (history.Item, error) {
	item := history.Item{
		ID:        rec.ID.String(),
		UserID:    rec.UserID,
		Location:  rec.Location,
		Timestamp: rec.Timestamp.UTC(),
	}
	if len(rec.WeatherData) > 0 {
		if err := json.Unmarshal(rec.WeatherData, &item.WeatherData); err != nil {
			return history.Item{}, err
		}
	}
	if len(rec.DateRange) > 0 && string(rec.DateRange) != "null" {
		var dr history.DateRange
		if err := json.Unmarshal(rec.DateRange, &dr); err != nil {
			return history.Item{}, err
		}
		item.DateRange = &dr
	}
	return item, nil
}
