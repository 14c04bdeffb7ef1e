package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-lookup/internal/models"
	"weather-lookup/internal/services/weather"
	"weather-lookup/pkg/logger"
)

type fakeController struct {
	state     weather.UiState
	saveErr   error
	saved     []SaveCityRequest
	searches  []string
	refreshes int
}

func (f *fakeController) State() weather.UiState { return f.state }

func (f *fakeController) SaveCity(_ context.Context, id int, name string) error {
	f.saved = append(f.saved, SaveCityRequest{ID: &id, Name: name})
	return f.saveErr
}

func (f *fakeController) SearchCity(_ context.Context, text string) {
	f.searches = append(f.searches, text)
}

func (f *fakeController) Refresh(context.Context) { f.refreshes++ }

type fakeLookup map[string]models.WeatherRecord

func (f fakeLookup) GetCurrentWeather(_ context.Context, q string) (models.WeatherRecord, bool) {
	rec, ok := f[q]
	return rec, ok
}

func newTestApp(ctrl StateController, lookup WeatherLookup) *fiber.App {
	app := fiber.New()
	NewRouter(app, ctrl, lookup, logger.NewNop())
	return app
}

func decode[T any](t *testing.T, body io.Reader) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func london() models.WeatherRecord {
	id := 2801268
	return models.WeatherRecord{
		Location: models.Location{ID: &id, Name: "London", Country: "United Kingdom"},
		Current: models.CurrentConditions{
			LastUpdatedEpoch: 1700000000,
			TempC:            11,
			Condition:        models.Condition{Text: "Partly cloudy", Icon: "//cdn.weatherapi.com/weather/64x64/day/116.png", Code: 1003},
		},
	}
}

func TestGetState(t *testing.T) {
	rec := london()
	ctrl := &fakeController{state: weather.UiState{
		SearchResults:  []models.WeatherRecord{rec},
		SelectedCity:   "London",
		CurrentWeather: &rec.Current,
	}}
	app := newTestApp(ctrl, fakeLookup{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/state", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[StateResponse](t, resp.Body)
	assert.Equal(t, "London", body.SelectedCity)
	require.NotNil(t, body.CurrentWeather)
	assert.Equal(t, "https://cdn.weatherapi.com/weather/64x64/day/116.png", body.CurrentWeather.IconURL)
	assert.Equal(t, "2023-11-14T22:13:20Z", body.CurrentWeather.LastUpdated)
	require.Len(t, body.SearchResults, 1)
	assert.Equal(t, 2801268, *body.SearchResults[0].Location.ID)
}

func TestGetState_EmptyResultsAreArray(t *testing.T) {
	app := newTestApp(&fakeController{}, fakeLookup{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/state", nil))
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"search_results":[]`)
	assert.Contains(t, string(raw), `"current_weather":null`)
}

func TestPostCity(t *testing.T) {
	ctrl := &fakeController{}
	app := newTestApp(ctrl, fakeLookup{})

	req := httptest.NewRequest("POST", "/api/v1/city", strings.NewReader(`{"id":2801268,"name":"London"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	require.Len(t, ctrl.saved, 1)
	assert.Equal(t, 2801268, *ctrl.saved[0].ID)
	assert.Equal(t, "London", ctrl.saved[0].Name)
}

func TestPostCity_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing id", `{"name":"London"}`},
		{"malformed", `{"id":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{}
			app := newTestApp(ctrl, fakeLookup{})

			req := httptest.NewRequest("POST", "/api/v1/city", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Empty(t, ctrl.saved)
		})
	}
}

func TestPostCity_StoreFailure(t *testing.T) {
	ctrl := &fakeController{saveErr: errors.New("redis down")}
	app := newTestApp(ctrl, fakeLookup{})

	req := httptest.NewRequest("POST", "/api/v1/city", strings.NewReader(`{"id":1,"name":"Oslo"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestSearch(t *testing.T) {
	ctrl := &fakeController{state: weather.UiState{SearchResults: []models.WeatherRecord{london()}}}
	app := newTestApp(ctrl, fakeLookup{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/search?q=Lon", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, []string{"Lon"}, ctrl.searches)
	body := decode[StateResponse](t, resp.Body)
	require.Len(t, body.SearchResults, 1)
	assert.Equal(t, "London", body.SearchResults[0].Location.Name)
}

func TestWeather(t *testing.T) {
	app := newTestApp(&fakeController{}, fakeLookup{"London": london()})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/weather?q=London", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[WeatherRecordResponse](t, resp.Body)
	assert.Equal(t, "London", body.Location.Name)
	assert.Equal(t, 11.0, body.Current.TempC)
	assert.Equal(t, "Partly cloudy", body.Current.Condition)
}

func TestWeather_MissingQuery(t *testing.T) {
	app := newTestApp(&fakeController{}, fakeLookup{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/weather", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode[ErrorResponse](t, resp.Body)
	assert.Equal(t, "Missing required parameter: q", body.Error)
}

func TestWeather_NotFound(t *testing.T) {
	app := newTestApp(&fakeController{}, fakeLookup{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/weather?q=Atlantis", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRefresh(t *testing.T) {
	ctrl := &fakeController{}
	app := newTestApp(ctrl, fakeLookup{})

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/refresh", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, ctrl.refreshes)
}

func TestSwaggerDoc(t *testing.T) {
	app := newTestApp(&fakeController{}, fakeLookup{})

	resp, err := app.Test(httptest.NewRequest("GET", "/swagger/doc.json", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	doc := decode[map[string]any](t, resp.Body)
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/api/v1/state")
}
