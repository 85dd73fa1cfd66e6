package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/history"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// newValidator returns a validator with the "weatherdate" tag registered. The
// tag accepts YYYY-MM-DD strings inside the supported date window, judged
// against today().
func newValidator(today func() time.Time) *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("weatherdate", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		now := today()
		d, err := weather.ParseDate(s, now.Location())
		if err != nil {
			return false
		}
		return weather.ValidateDate(d, now) == nil
	})
	return v
}

// validationMessage turns validator errors into a short client message.
func validationMessage(err error, today time.Time) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "weatherdate":
			msgs = append(msgs, fmt.Sprintf("%s must be a YYYY-MM-DD date between %s and %s",
				field,
				weather.EarliestDate.Format(weather.DateLayout),
				today.AddDate(0, 0, weather.MaxForecastAhead).Format(weather.DateLayout)))
		case "latitude", "longitude":
			msgs = append(msgs, field+" must be a valid "+fe.Tag())
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// weatherQuery holds query parameters for the location search.
type weatherQuery struct {
	Location string `validate:"required"`
	Date     string `validate:"omitempty,weatherdate"`
	UserID   string
	Save     bool
}

func (q *weatherQuery) bind(c *fiber.Ctx) {
	q.Location = strings.TrimSpace(c.Query("location"))
	q.Date = c.Query("date")
	q.UserID = c.Query("userId")
	q.Save = c.QueryBool("save", true)
}

// coordinatesQuery holds lat/lon query parameters. They are validated as
// strings so that a missing value is distinguishable from 0.
type coordinatesQuery struct {
	Lat    string `validate:"required,latitude"`
	Lon    string `validate:"required,longitude"`
	UserID string
	Save   bool
}

func (q *coordinatesQuery) bind(c *fiber.Ctx) {
	q.Lat = c.Query("lat")
	q.Lon = c.Query("lon")
	q.UserID = c.Query("userId")
	q.Save = c.QueryBool("save", true)
}

func (q coordinatesQuery) floats() (float64, float64, error) {
	lat, err := strconv.ParseFloat(q.Lat, 64)
	if err != nil {
		return 0, 0, err
	}
	lon, err := strconv.ParseFloat(q.Lon, 64)
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

type placeQuery struct {
	Location string `validate:"required"`
}

type exportQuery struct {
	Format   string `validate:"required,oneof=json csv markdown"`
	Filename string
	UserID   string
}

func (q *exportQuery) bind(c *fiber.Ctx) {
	q.Format = strings.ToLower(c.Query("format"))
	q.Filename = c.Query("filename", history.DefaultExportName)
	q.UserID = c.Query("userId")
}

// dateRangeBody is the wire form of history.DateRange with validated ends.
type dateRangeBody struct {
	From *string `json:"from" validate:"omitempty,weatherdate"`
	To   *string `json:"to" validate:"omitempty,weatherdate"`
}

func (d *dateRangeBody) toDomain() *history.DateRange {
	if d == nil {
		return nil
	}
	return &history.DateRange{From: d.From, To: d.To}
}

type createHistoryRequest struct {
	UserID      string              `json:"userId"`
	Location    string              `json:"location" validate:"required"`
	Timestamp   *time.Time          `json:"timestamp"`
	WeatherData weather.WeatherData `json:"weatherData"`
	DateRange   *dateRangeBody      `json:"dateRange"`
}

func (r createHistoryRequest) toItem() history.Item {
	item := history.Item{
		UserID:      r.UserID,
		Location:    r.Location,
		WeatherData: r.WeatherData,
		DateRange:   r.DateRange.toDomain(),
	}
	if r.Timestamp != nil {
		item.Timestamp = *r.Timestamp
	}
	return item
}

type updateHistoryRequest struct {
	Location    *string              `json:"location"`
	Timestamp   *time.Time           `json:"timestamp"`
	WeatherData *weather.WeatherData `json:"weatherData"`
	DateRange   *dateRangeBody       `json:"dateRange"`
}

func (r updateHistoryRequest) toPatch() history.Patch {
	return history.Patch{
		Location:    r.Location,
		Timestamp:   r.Timestamp,
		WeatherData: r.WeatherData,
		DateRange:   r.DateRange.toDomain(),
	}
}
