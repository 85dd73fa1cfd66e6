package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/history"
	"github.com/i474232898/weather-lookup/internal/notify"
	"github.com/i474232898/weather-lookup/internal/places"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// Deps are the services the HTTP layer exposes.
type Deps struct {
	Weather  *weather.Service
	Places   *places.Service
	History  *history.Service
	Sessions *Sequencer
	Logger   *zap.Logger
}

type handler struct {
	Deps
	validate *validator.Validate
}

// NewApp creates the Fiber app. Handlers keep query, param and header values
// after the request (history items, session ids), so fiber must not hand out
// strings backed by its reused buffers.
func NewApp(cfg fiber.Config) *fiber.App {
	cfg.Immutable = true
	return fiber.New(cfg)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Sessions == nil {
		deps.Sessions = NewSequencer()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	h := &handler{Deps: deps, validate: newValidator(deps.Weather.Today)}

	v1 := app.Group("/api/v1", withNotifications)

	v1.Get("/weather", h.getWeather)
	v1.Get("/weather/coordinates", h.getWeatherByCoordinates)

	v1.Get("/places/videos", h.getVideos)
	v1.Get("/places/map", h.getMapData)
	v1.Get("/places/reverse", h.getReverse)

	v1.Get("/history", h.listHistory)
	v1.Post("/history", h.createHistory)
	v1.Get("/history/export", h.exportHistory)
	v1.Patch("/history/:id", h.updateHistory)
	v1.Delete("/history/:id", h.deleteHistory)
}

func (h *handler) getWeather(c *fiber.Ctx) error {
	var q weatherQuery
	q.bind(c)
	if err := h.validate.Struct(q); err != nil {
		return h.badRequest(c, err)
	}

	var date *time.Time
	if q.Date != "" {
		d, err := weather.ParseDate(q.Date, h.Weather.Timezone())
		if err != nil {
			return h.badRequest(c, err)
		}
		date = &d
	}

	token := h.Sessions.Begin(c.Get(SessionHeader))
	defer h.Sessions.Done(token)
	data, err := h.Weather.FetchWeather(c.UserContext(), q.Location, date)
	if err != nil {
		return h.fail(c, weatherStatus(err), "Failed to fetch weather data: "+weather.Reason(err))
	}

	stale := !h.Sessions.Current(token)
	if !stale && q.Save {
		item := history.Item{UserID: q.UserID, Location: q.Location, WeatherData: *data}
		if q.Date != "" {
			d := q.Date
			item.DateRange = &history.DateRange{From: &d, To: &d}
		}
		h.save(c, item)
	}
	return respond(c, fiber.StatusOK, data, stale)
}

func (h *handler) getWeatherByCoordinates(c *fiber.Ctx) error {
	var q coordinatesQuery
	q.bind(c)
	if err := h.validate.Struct(q); err != nil {
		return h.badRequest(c, err)
	}
	lat, lon, err := q.floats()
	if err != nil {
		return h.badRequest(c, err)
	}

	token := h.Sessions.Begin(c.Get(SessionHeader))
	defer h.Sessions.Done(token)
	data, err := h.Weather.FetchWeatherByCoordinates(c.UserContext(), lat, lon)
	if err != nil {
		return h.fail(c, weatherStatus(err), "Failed to fetch weather data: "+weather.Reason(err))
	}

	stale := !h.Sessions.Current(token)
	if !stale && q.Save {
		h.save(c, history.Item{
			UserID:      q.UserID,
			Location:    fmt.Sprintf("%s, %s", data.Location.Name, data.Location.Country),
			WeatherData: *data,
		})
	}
	return respond(c, fiber.StatusOK, data, stale)
}

// save records a search. A failure is already reported through the tray and
// does not fail the lookup.
func (h *handler) save(c *fiber.Ctx, item history.Item) {
	if h.History == nil {
		return
	}
	_, _ = h.History.Create(c.UserContext(), item)
}

func (h *handler) getVideos(c *fiber.Ctx) error {
	q := placeQuery{Location: c.Query("location")}
	if err := h.validate.Struct(q); err != nil {
		return h.badRequest(c, err)
	}
	return respond(c, fiber.StatusOK, h.Places.Videos(c.UserContext(), q.Location), false)
}

func (h *handler) getMapData(c *fiber.Ctx) error {
	q := placeQuery{Location: c.Query("location")}
	if err := h.validate.Struct(q); err != nil {
		return h.badRequest(c, err)
	}
	loc, err := h.Places.MapData(c.UserContext(), q.Location)
	if err != nil {
		if errors.Is(err, places.ErrNotFound) {
			return h.fail(c, fiber.StatusNotFound, "location not found")
		}
		return h.fail(c, fiber.StatusBadGateway, "failed to fetch location data")
	}
	return respond(c, fiber.StatusOK, loc, false)
}

func (h *handler) getReverse(c *fiber.Ctx) error {
	q := coordinatesQuery{Lat: c.Query("lat"), Lon: c.Query("lon")}
	if err := h.validate.Struct(q); err != nil {
		return h.badRequest(c, err)
	}
	lat, lon, err := q.floats()
	if err != nil {
		return h.badRequest(c, err)
	}
	loc, err := h.Places.Reverse(c.UserContext(), lat, lon)
	if err != nil {
		switch {
		case errors.Is(err, places.ErrNotFound):
			return h.fail(c, fiber.StatusNotFound, "no place found at these coordinates")
		case errors.Is(err, context.DeadlineExceeded):
			return h.fail(c, fiber.StatusGatewayTimeout, "geolocation timed out")
		}
		return h.fail(c, fiber.StatusBadGateway, "failed to determine location")
	}
	return respond(c, fiber.StatusOK, loc, false)
}

func (h *handler) listHistory(c *fiber.Ctx) error {
	items, err := h.History.List(c.UserContext(), c.Query("userId"))
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, "failed to load search history")
	}
	return respond(c, fiber.StatusOK, items, false)
}

func (h *handler) createHistory(c *fiber.Ctx) error {
	var req createHistoryRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return h.badRequest(c, err)
	}

	id, err := h.History.Create(c.UserContext(), req.toItem())
	if err != nil {
		if errors.Is(err, history.ErrInvalidItem) {
			return h.badRequest(c, err)
		}
		return h.fail(c, fiber.StatusInternalServerError, "failed to save search history")
	}
	return respond(c, fiber.StatusCreated, fiber.Map{"id": id}, false)
}

func (h *handler) updateHistory(c *fiber.Ctx) error {
	var req updateHistoryRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return h.badRequest(c, err)
	}
	if req.Location != nil {
		loc := strings.TrimSpace(*req.Location)
		if loc == "" {
			return h.fail(c, fiber.StatusBadRequest, "location must not be empty")
		}
		req.Location = &loc
	}

	if err := h.History.Update(c.UserContext(), c.Params("id"), req.toPatch()); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return h.fail(c, fiber.StatusNotFound, "history item not found")
		}
		return h.fail(c, fiber.StatusInternalServerError, "failed to update history item")
	}
	return respond(c, fiber.StatusOK, fiber.Map{"updated": true}, false)
}

func (h *handler) deleteHistory(c *fiber.Ctx) error {
	if err := h.History.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, fiber.StatusInternalServerError, "failed to delete history item")
	}
	return respond(c, fiber.StatusOK, fiber.Map{"deleted": true}, false)
}

func (h *handler) exportHistory(c *fiber.Ctx) error {
	var q exportQuery
	q.bind(c)
	if err := h.validate.Struct(q); err != nil {
		return h.badRequest(c, err)
	}

	items, err := h.History.List(c.UserContext(), q.UserID)
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, "failed to load search history")
	}

	format := history.Format(q.Format)
	text, err := history.Export(items, format)
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, "failed to export search history")
	}

	a := history.Download(text, q.Filename, format)
	c.Attachment(a.Filename)
	c.Set(fiber.HeaderContentType, a.ContentType+"; charset=utf-8")
	return c.Send(a.Body)
}

func (h *handler) badRequest(c *fiber.Ctx, err error) error {
	return h.fail(c, fiber.StatusBadRequest, validationMessage(err, h.Weather.Today()))
}

func (h *handler) fail(c *fiber.Ctx, status int, msg string) error {
	h.Logger.Debug("request failed",
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.String("message", msg))
	return c.Status(status).JSON(fiber.Map{
		"error":         true,
		"message":       msg,
		"notifications": notifications(c),
	})
}

// weatherStatus maps a weather lookup failure to an HTTP status.
func weatherStatus(err error) int {
	if errors.Is(err, weather.ErrNotFound) {
		return fiber.StatusNotFound
	}
	var nf interface{ NotFound() bool }
	if errors.As(err, &nf) && nf.NotFound() {
		return fiber.StatusNotFound
	}
	return fiber.StatusBadGateway
}

// withNotifications attaches a fresh notification tray to the request context.
func withNotifications(c *fiber.Ctx) error {
	c.SetUserContext(notify.WithTray(c.UserContext(), notify.NewTray()))
	return c.Next()
}

func notifications(c *fiber.Ctx) []notify.Notification {
	if tray := notify.FromContext(c.UserContext()); tray != nil {
		return tray.Items()
	}
	return []notify.Notification{}
}

type envelope struct {
	Data          any                   `json:"data"`
	Notifications []notify.Notification `json:"notifications"`
	Stale         bool                  `json:"stale,omitempty"`
}

func respond(c *fiber.Ctx, status int, data any, stale bool) error {
	return c.Status(status).JSON(envelope{
		Data:          data,
		Notifications: notifications(c),
		Stale:         stale,
	})
}
