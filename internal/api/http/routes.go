package httpapi

import (
	"crypto/subtle"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/providerconfig"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/userdata"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// SessionHeader carries the session whose history and favorites a request touches.
const SessionHeader = "X-Session"

var validate = validator.New()

// Deps are the collaborators the HTTP handlers need.
type Deps struct {
	Service    *weather.Service
	Lookups    *weather.LookupTracker
	KV         store.KV
	Providers  *providerconfig.Store
	AdminToken string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/api/weather-key", func(c *fiber.Ctx) error {
		cfg, err := d.Providers.Get(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read provider config")
		}
		return c.JSON(cfg)
	})

	app.Put("/api/weather-key", adminOnly(d.AdminToken), func(c *fiber.Ctx) error {
		var cfg weather.ProviderConfig
		if err := c.BodyParser(&cfg); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid provider config body")
		}
		if err := d.Providers.Set(c.UserContext(), cfg); err != nil {
			var verr validator.ValidationErrors
			if errors.As(err, &verr) {
				return fiber.NewError(fiber.StatusBadRequest, verr.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store provider config")
		}
		return c.JSON(cfg)
	})

	v1 := app.Group("/api/v1")

	v1.Get("/geocode", func(c *fiber.Ctx) error {
		ctx, tok := d.Lookups.Begin(c.UserContext(), "geocode:"+session(c))
		defer d.Lookups.Finish(tok)

		locs := d.Service.GeocodeCity(ctx, c.Query("name"))
		if !d.Lookups.Current(tok) {
			return fiber.NewError(fiber.StatusConflict, "lookup superseded by a newer request")
		}
		return c.JSON(locs)
	})

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		coords, err := parseCoordinates(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx, tok := d.Lookups.Begin(c.UserContext(), "forecast:"+session(c))
		defer d.Lookups.Finish(tok)

		doc := d.Service.FetchWeather(ctx, coords)
		if !d.Lookups.Current(tok) {
			return fiber.NewError(fiber.StatusConflict, "lookup superseded by a newer request")
		}
		if doc == nil {
			return fiber.NewError(fiber.StatusBadGateway, "weather data unavailable")
		}
		return c.JSON(doc)
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		entries, err := cacheFor(c, d.KV).ReadHistory(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read history")
		}
		return c.JSON(entries)
	})

	v1.Post("/history", func(c *fiber.Ctx) error {
		var loc weather.Location
		if err := c.BodyParser(&loc); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid location body")
		}
		if err := validate.StructPartial(loc, "Name", "Latitude", "Longitude"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := cacheFor(c, d.KV).AddHistory(c.UserContext(), loc); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to record history")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Delete("/history", func(c *fiber.Ctx) error {
		if err := cacheFor(c, d.KV).ClearHistory(c.UserContext()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to clear history")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Delete("/history/:name", func(c *fiber.Ctx) error {
		if err := cacheFor(c, d.KV).RemoveHistoryItem(c.UserContext(), c.Params("name")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to remove history item")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/favorites", func(c *fiber.Ctx) error {
		favs, err := cacheFor(c, d.KV).ReadFavorites(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read favorites")
		}
		return c.JSON(favs)
	})

	v1.Post("/favorites", func(c *fiber.Ctx) error {
		var fav userdata.Favorite
		if err := c.BodyParser(&fav); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid location body")
		}
		if err := validate.Struct(fav); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := cacheFor(c, d.KV).AddFavorite(c.UserContext(), fav); err != nil {
			if errors.Is(err, userdata.ErrMissingID) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to add favorite")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Delete("/favorites/:id", func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "id must be an integer")
		}
		if err := cacheFor(c, d.KV).RemoveFavorite(c.UserContext(), id); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to remove favorite")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func session(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Get(SessionHeader))
}

func cacheFor(c *fiber.Ctx, kv store.KV) *userdata.Cache {
	return userdata.New(kv, session(c))
}

// coordinatesQuery holds query parameters for the forecast endpoint.
type coordinatesQuery struct {
	Latitude  string `validate:"required,latitude"`
	Longitude string `validate:"required,longitude"`
}

func parseCoordinates(c *fiber.Ctx) (weather.Coordinates, error) {
	q := coordinatesQuery{
		Latitude:  c.Query("latitude"),
		Longitude: c.Query("longitude"),
	}
	if err := validate.Struct(q); err != nil {
		return weather.Coordinates{}, err
	}

	lat, err := strconv.ParseFloat(q.Latitude, 64)
	if err != nil {
		return weather.Coordinates{}, errors.New("latitude must be a number")
	}
	lon, err := strconv.ParseFloat(q.Longitude, 64)
	if err != nil {
		return weather.Coordinates{}, errors.New("longitude must be a number")
	}
	return weather.Coordinates{Latitude: lat, Longitude: lon}, nil
}

// adminOnly guards a route with a static bearer token. An empty token disables the route.
func adminOnly(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return fiber.NewError(fiber.StatusForbidden, "admin access is not configured")
		}
		header := c.Get(fiber.HeaderAuthorization)
		got, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid admin token")
		}
		return c.Next()
	}
}
