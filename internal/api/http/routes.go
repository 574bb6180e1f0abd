package httpapi

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-daily-overview/internal/store"
	"github.com/i474232898/weather-daily-overview/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/presets", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"presets": service.Presets()})
	})

	v1.Get("/weather/overview", func(c *fiber.Ctx) error {
		ov, err := overview(c, service)
		if err != nil {
			return err
		}
		return c.JSON(ov)
	})

	v1.Get("/weather/daily/temperature", func(c *fiber.Ctx) error {
		ov, err := overview(c, service)
		if err != nil {
			return err
		}
		return c.JSON(dailyResponse(ov, ov.Temperature))
	})

	v1.Get("/weather/daily/precipitation", func(c *fiber.Ctx) error {
		ov, err := overview(c, service)
		if err != nil {
			return err
		}
		return c.JSON(dailyResponse(ov, ov.Precipitation))
	})

	v1.Get("/weather/daily/wind", func(c *fiber.Ctx) error {
		ov, err := overview(c, service)
		if err != nil {
			return err
		}
		return c.JSON(dailyResponse(ov, ov.Wind))
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		q := req.Location.toQuery()
		overviews, err := service.GetRange(q, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) || errors.Is(err, weather.ErrNoHistory) {
				return fiber.NewError(fiber.StatusNotFound, "no overviews for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read overview history")
		}

		return c.JSON(fiber.Map{
			"location":  q,
			"from":      req.From,
			"to":        req.To,
			"overviews": overviews,
		})
	})

	v1.Get("/wind/classify", func(c *fiber.Ctx) error {
		var req classifyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(weather.Classify(*req.Gust))
	})
}

// RegisterMetrics exposes the collectors of g in the Prometheus text format.
func RegisterMetrics(app *fiber.App, g prometheus.Gatherer) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
}

// ErrorHandler renders every error as a JSON body with the matching status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

func overview(c *fiber.Ctx, service *weather.Service) (weather.Overview, error) {
	locReq, err := parseLocationQuery(c)
	if err != nil {
		return weather.Overview{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	ov, err := service.Overview(c.UserContext(), locReq.toQuery())
	if err != nil {
		return weather.Overview{}, overviewError(err)
	}
	return ov, nil
}

// overviewError maps service failures onto HTTP statuses.
func overviewError(err error) error {
	switch {
	case errors.Is(err, weather.ErrLocationNotFound), errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, weather.ErrEmptyInput), errors.Is(err, weather.ErrMalformedRecord):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	default:
		return fiber.NewError(fiber.StatusBadGateway, "failed to build weather overview")
	}
}

func dailyResponse(ov weather.Overview, days any) fiber.Map {
	return fiber.Map{
		"place": ov.Place,
		"label": ov.Label,
		"today": ov.Today,
		"days":  days,
	}
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	Name    string `validate:"required,max=100"`
	Country string `validate:"omitempty,len=2,alpha"`
}

func (l locationQuery) toQuery() weather.LocationQuery {
	return weather.LocationQuery{
		Name:    l.Name,
		Country: l.Country,
	}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	q.Name = c.Query("name")
	q.Country = c.Query("country")

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location locationQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	h.Location = loc

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// classifyQuery holds the gust value in km/h. Any finite value is accepted;
// negative gusts classify as normal.
type classifyQuery struct {
	Gust *float64 `validate:"required"`
}

func (q *classifyQuery) bind(c *fiber.Ctx) error {
	s := c.Query("gust")
	if s == "" {
		return errors.New("gust query parameter is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.New("gust must be a number in km/h")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New("gust must be a finite number in km/h")
	}
	q.Gust = &v
	return nil
}

// parseTime tries RFC3339, a plain date (midnight UTC), then Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(time.DateOnly, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339, YYYY-MM-DD or unix seconds")
}
