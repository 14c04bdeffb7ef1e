package repositories

import (
	"context"
	"strconv"

	"weather-lookup/internal/models"
	"weather-lookup/pkg/logger"
)

// WeatherAPI is the remote side of the repository.
type WeatherAPI interface {
	SearchLocations(ctx context.Context, text string) ([]models.Location, error)
	Current(ctx context.Context, query string) (models.WeatherRecord, error)
}

// Result carries either a value or the failure that replaced it.
type Result[T any] struct {
	Value T
	Err   error
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}

func (r *WeatherRepository) current(ctx context.Context, query string) Result[models.WeatherRecord] {
	rec, err := r.api.Current(ctx, query)
	return Result[models.WeatherRecord]{Value: rec, Err: err}
}

func (r *WeatherRepository) search(ctx context.Context, text string) Result[[]models.Location] {
	locations, err := r.api.SearchLocations(ctx, text)
	return Result[[]models.Location]{Value: locations, Err: err}
}

// WeatherRepository absorbs every remote failure. Callers only ever see a
// value or its absence; the cause goes to the log.
type WeatherRepository struct {
	api WeatherAPI
	l   *logger.Logger
}

func NewWeatherRepository(api WeatherAPI, l *logger.Logger) *WeatherRepository {
	return &WeatherRepository{
		api: api,
		l:   l,
	}
}

// IDQuery builds the current.json query for a location id.
func IDQuery(id int) string {
	return "id:" + strconv.Itoa(id)
}

func (r *WeatherRepository) GetCurrentWeatherByID(ctx context.Context, id int) (models.WeatherRecord, bool) {
	return r.GetCurrentWeather(ctx, IDQuery(id))
}

func (r *WeatherRepository) GetCurrentWeather(ctx context.Context, query string) (models.WeatherRecord, bool) {
	res := r.current(ctx, query)
	if !res.OK() {
		r.l.Error(res.Err, map[string]any{"operation": "current", "query": query})
		return models.WeatherRecord{}, false
	}
	return res.Value, true
}

// SearchCity returns the matches for text in service order, or an empty
// slice when the search failed.
func (r *WeatherRepository) SearchCity(ctx context.Context, text string) []models.Location {
	res := r.search(ctx, text)
	if !res.OK() {
		r.l.Error(res.Err, map[string]any{"operation": "search", "query": text})
		return []models.Location{}
	}
	if res.Value == nil {
		return []models.Location{}
	}
	return res.Value
}
