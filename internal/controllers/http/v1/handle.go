package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"weather-lookup/internal/models"
	"weather-lookup/internal/services/weather"
)

// LocationResponse is a search hit or the location of a lookup
type LocationResponse struct {
	ID      *int    `json:"id,omitempty" example:"2801268"`
	Name    string  `json:"name" example:"London"`
	Region  string  `json:"region" example:"City of London, Greater London"`
	Country string  `json:"country" example:"United Kingdom"`
	Lat     float64 `json:"lat" example:"51.52"`
	Lon     float64 `json:"lon" example:"-0.11"`
}

// ConditionsResponse represents current conditions with an absolute icon URL
type ConditionsResponse struct {
	LastUpdated      string  `json:"last_updated" example:"2023-11-14T22:13:20Z"`
	LastUpdatedEpoch int64   `json:"last_updated_epoch" example:"1700000000"`
	TempC            float64 `json:"temp_c" example:"11"`
	TempF            float64 `json:"temp_f" example:"51.8"`
	Condition        string  `json:"condition" example:"Partly cloudy"`
	ConditionCode    int     `json:"condition_code" example:"1003"`
	IconURL          string  `json:"icon_url" example:"https://cdn.weatherapi.com/weather/64x64/day/116.png"`
	Humidity         int     `json:"humidity" example:"82"`
	FeelsLikeC       float64 `json:"feelslike_c" example:"9.6"`
	FeelsLikeF       float64 `json:"feelslike_f" example:"49.3"`
	UV               float64 `json:"uv" example:"3"`
}

// WeatherRecordResponse pairs a location with its current conditions
type WeatherRecordResponse struct {
	Location LocationResponse   `json:"location"`
	Current  ConditionsResponse `json:"current"`
}

// StateResponse mirrors the controller state
type StateResponse struct {
	SearchResults   []WeatherRecordResponse `json:"search_results"`
	SelectedCity    string                  `json:"selected_city" example:"London"`
	CurrentWeather  *ConditionsResponse     `json:"current_weather"`
	IsLoading       bool                    `json:"is_loading"`
	IsLoadingSearch bool                    `json:"is_loading_search"`
	Error           string                  `json:"error,omitempty"`
}

// SaveCityRequest selects a city
type SaveCityRequest struct {
	ID   *int   `json:"id" validate:"required" example:"2801268"`
	Name string `json:"name" example:"London"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"Missing required parameter: q"`
}

type queryParams struct {
	Q string `query:"q" validate:"required"`
}

func toLocation(l models.Location) LocationResponse {
	return LocationResponse{
		ID:      l.ID,
		Name:    l.Name,
		Region:  l.Region,
		Country: l.Country,
		Lat:     l.Lat,
		Lon:     l.Lon,
	}
}

func toConditions(c models.CurrentConditions) ConditionsResponse {
	return ConditionsResponse{
		LastUpdated:      c.LastUpdated().Format(time.RFC3339),
		LastUpdatedEpoch: c.LastUpdatedEpoch,
		TempC:            c.TempC,
		TempF:            c.TempF,
		Condition:        c.Condition.Text,
		ConditionCode:    c.Condition.Code,
		IconURL:          c.Condition.IconURL(),
		Humidity:         c.Humidity,
		FeelsLikeC:       c.FeelsLikeC,
		FeelsLikeF:       c.FeelsLikeF,
		UV:               c.UV,
	}
}

func toRecord(r models.WeatherRecord) WeatherRecordResponse {
	return WeatherRecordResponse{
		Location: toLocation(r.Location),
		Current:  toConditions(r.Current),
	}
}

func toState(st weather.UiState) StateResponse {
	resp := StateResponse{
		SearchResults:   make([]WeatherRecordResponse, 0, len(st.SearchResults)),
		SelectedCity:    st.SelectedCity,
		IsLoading:       st.IsLoading,
		IsLoadingSearch: st.IsLoadingSearch,
		Error:           st.Error,
	}
	for _, rec := range st.SearchResults {
		resp.SearchResults = append(resp.SearchResults, toRecord(rec))
	}
	if st.CurrentWeather != nil {
		current := toConditions(*st.CurrentWeather)
		resp.CurrentWeather = &current
	}
	return resp
}

// GetState godoc
// @Summary Current UI state
// @Description Returns the selected city, its current conditions and the latest search results
// @Tags Weather
// @Produce json
// @Success 200 {object} StateResponse
// @Router /api/v1/state [get]
func (r *routes) handleState(c *fiber.Ctx) error {
	return c.JSON(toState(r.controller.State()))
}

// SaveCity godoc
// @Summary Select a city
// @Description Persists the selection. The state picks it up asynchronously.
// @Tags Weather
// @Accept json
// @Produce json
// @Param request body SaveCityRequest true "Selected location"
// @Success 202 {object} SaveCityRequest
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/city [post]
func (r *routes) handleSaveCity(c *fiber.Ctx) error {
	var req SaveCityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid request body",
		})
	}
	if err := r.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Missing required field: id",
		})
	}

	if err := r.controller.SaveCity(c.UserContext(), *req.ID, req.Name); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Failed to save city",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(req)
}

// SearchCity godoc
// @Summary Search cities
// @Description Runs a search and returns the resulting state. Fewer than 3 characters clears the results.
// @Tags Weather
// @Produce json
// @Param q query string false "Search text" example(Lon)
// @Success 200 {object} StateResponse
// @Router /api/v1/search [get]
func (r *routes) handleSearch(c *fiber.Ctx) error {
	r.controller.SearchCity(c.UserContext(), c.Query("q"))
	return c.JSON(toState(r.controller.State()))
}

// GetWeather godoc
// @Summary Current conditions by free text
// @Description Looks up current conditions for a city name or an "id:<n>" query
// @Tags Weather
// @Produce json
// @Param q query string true "City name or id:<n>" example(London)
// @Success 200 {object} WeatherRecordResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/weather [get]
func (r *routes) handleWeather(c *fiber.Ctx) error {
	var params queryParams
	if err := c.QueryParser(&params); err != nil || r.validate.Struct(params) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Missing required parameter: q",
		})
	}

	rec, ok := r.lookup.GetCurrentWeather(c.UserContext(), params.Q)
	if !ok {
		r.l.Warning("no current conditions", map[string]any{"query": params.Q})
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: "No current conditions for " + params.Q,
		})
	}

	return c.JSON(toRecord(rec))
}

// Refresh godoc
// @Summary Refresh the selected city
// @Tags Weather
// @Produce json
// @Success 200 {object} StateResponse
// @Router /api/v1/refresh [post]
func (r *routes) handleRefresh(c *fiber.Ctx) error {
	r.controller.Refresh(c.UserContext())
	return c.JSON(toState(r.controller.State()))
}
