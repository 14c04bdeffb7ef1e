package http

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "weather-lookup/docs"
	"weather-lookup/internal/models"
	"weather-lookup/internal/services/weather"
	"weather-lookup/pkg/logger"
)

// StateController is the part of the weather controller exposed over HTTP.
type StateController interface {
	State() weather.UiState
	SaveCity(ctx context.Context, id int, name string) error
	SearchCity(ctx context.Context, text string)
	Refresh(ctx context.Context)
}

type WeatherLookup interface {
	GetCurrentWeather(ctx context.Context, query string) (models.WeatherRecord, bool)
}

type routes struct {
	controller StateController
	lookup     WeatherLookup
	validate   *validator.Validate
	l          *logger.Logger
}

func NewRouter(
	app *fiber.App,
	controller StateController,
	lookup WeatherLookup,
	l *logger.Logger,
) {
	r := &routes{
		controller: controller,
		lookup:     lookup,
		validate:   validator.New(),
		l:          l,
	}

	app.Get("/swagger/*", swagger.New(swagger.Config{
		URL:         "doc.json",
		DeepLinking: true,
	}))

	v1 := app.Group("/api/v1")
	v1.Get("/state", r.handleState)
	v1.Post("/city", r.handleSaveCity)
	v1.Get("/search", r.handleSearch)
	v1.Get("/weather", r.handleWeather)
	v1.Post("/refresh", r.handleRefresh)
}
