package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-widget/internal/icon"
	"github.com/i474232898/weather-widget/internal/store"
	"github.com/i474232898/weather-widget/internal/weather"
	"github.com/i474232898/weather-widget/internal/widget"
)

var validate = validator.New()

// IconFetcher downloads the condition icon of a snapshot.
type IconFetcher interface {
	Fetch(ctx context.Context, url string) (icon.Icon, error)
}

// Options carries the optional collaborators of the API.
type Options struct {
	Icons    IconFetcher
	Gatherer prometheus.Gatherer
	// Now defaults to time.Now.
	Now func() time.Time
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. Background
// refreshes started over HTTP run under ctx rather than the request context.
func RegisterRoutes(ctx context.Context, app *fiber.App, service *weather.Service, opts Options) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		var q currentQuery
		q.Format = c.Query("format", "json")
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "format must be json or text")
		}

		snapshot, err := latest(service)
		if err != nil {
			return err
		}

		panel := widget.Render(snapshot, now())
		if q.Format == "text" {
			return c.SendString(panel.String())
		}
		return c.JSON(newSnapshotView(snapshot, panel, now()))
	})

	v1.Get("/weather/status", func(c *fiber.Ctx) error {
		return c.JSON(service.Status())
	})

	v1.Post("/weather/refresh", func(c *fiber.Ctx) error {
		if err := service.StartRefresh(ctx); err != nil {
			if errors.Is(err, weather.ErrCycleInFlight) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to start refresh")
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "refresh started"})
	})

	v1.Get("/weather/icon", func(c *fiber.Ctx) error {
		if opts.Icons == nil {
			return fiber.NewError(fiber.StatusNotFound, "icons are not available")
		}

		snapshot, err := latest(service)
		if err != nil {
			return err
		}
		if snapshot.IconURL == "" {
			return fiber.NewError(fiber.StatusNotFound, "current weather has no icon")
		}

		ic, err := opts.Icons.Fetch(c.UserContext(), snapshot.IconURL)
		if err != nil {
			if errors.Is(err, icon.ErrNoIcon) {
				return fiber.NewError(fiber.StatusNotFound, "current weather has no icon")
			}
			return fiber.NewError(fiber.StatusBadGateway, "failed to download icon")
		}

		c.Set(fiber.HeaderContentType, ic.ContentType)
		c.Set(fiber.HeaderCacheControl, "public, max-age=600")
		return c.Send(ic.Data)
	})
}

func latest(service *weather.Service) (weather.Snapshot, error) {
	snapshot, err := service.GetLatest()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return weather.Snapshot{}, fiber.NewError(fiber.StatusNotFound, "no weather data fetched yet")
		}
		return weather.Snapshot{}, fiber.NewError(fiber.StatusInternalServerError, "failed to read weather data")
	}
	return snapshot, nil
}

// currentQuery holds query parameters for the current weather endpoint.
type currentQuery struct {
	Format string `validate:"oneof=json text"`
}

// snapshotView is the JSON form of a snapshot with the derived display values.
type snapshotView struct {
	weather.Snapshot

	PressureMmHg         int          `json:"pressureMmHg"`
	WindMps              int          `json:"windMps"`
	WindDirectionLabel   string       `json:"windDirectionLabel"`
	PrecipitationWarning string       `json:"precipitationWarning"`
	Panel                widget.Panel `json:"panel"`

	// Unresolved sun events are sent as null rather than as year 1.
	Sunrise *time.Time `json:"sunrise"`
	Sunset  *time.Time `json:"sunset"`
}

func newSnapshotView(s weather.Snapshot, panel widget.Panel, now time.Time) snapshotView {
	v := snapshotView{
		Snapshot:             s,
		PressureMmHg:         s.PressureMmHg(),
		WindMps:              s.WindMps(),
		WindDirectionLabel:   s.WindDirectionLabel(),
		PrecipitationWarning: s.PrecipitationWarningAt(now),
		Panel:                panel,
	}
	if s.HasSunrise() {
		v.Sunrise = &s.Sunrise
	}
	if s.HasSunset() {
		v.Sunset = &s.Sunset
	}
	return v
}
