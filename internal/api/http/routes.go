package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/boreal-gis/site-atlas/internal/atlas"
	"github.com/boreal-gis/site-atlas/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *atlas.Service) {
	serveMap := func(c *fiber.Ctx) error {
		snapshot, err := service.Latest()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no map has been built yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load map")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(snapshot.HTML)
	}
	app.Get("/", serveMap)
	app.Get("/map", serveMap)

	v1 := app.Group("/api/v1")

	v1.Get("/counts", func(c *fiber.Ctx) error {
		snapshot, err := service.CountsFor(c.Query("region"))
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				return fiber.NewError(fiber.StatusNotFound, "no map has been built yet")
			case errors.Is(err, atlas.ErrUnknownRegion):
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load counts")
		}

		return c.JSON(fiber.Map{
			"id":          snapshot.ID,
			"generatedAt": snapshot.GeneratedAt,
			"counts":      snapshot.Counts,
			"sources":     snapshot.Sources,
		})
	})

	v1.Get("/heat", func(c *fiber.Ctx) error {
		q := heatQuery{Province: c.Query("province")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		points, err := service.HeatFor(q.Province)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no map has been built yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load heat samples")
		}

		return c.JSON(fiber.Map{
			"province": q.Province,
			"points":   points,
		})
	})

	v1.Get("/boundaries", func(c *fiber.Ctx) error {
		q := boundaryQuery{Level: c.Query("level")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		fc, err := service.Boundaries(q.Level)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fc)
	})

	v1.Get("/builds", func(c *fiber.Ctx) error {
		var req buildsQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		builds, err := service.Builds(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no builds in requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch build history")
		}

		return c.JSON(fiber.Map{
			"from":   req.From,
			"to":     req.To,
			"builds": builds,
		})
	})
}

// heatQuery holds query parameters for the heat endpoint.
type heatQuery struct {
	Province string `validate:"required"`
}

// boundaryQuery holds query parameters for the boundaries endpoint.
type boundaryQuery struct {
	Level string `validate:"required,oneof=province region"`
}

// buildsQuery holds query parameters for the build history endpoint.
type buildsQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (b *buildsQuery) bind(c *fiber.Ctx) error {
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

	b.From = from
	b.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
