// Package docs registers the OpenAPI document served under /swagger.
// Keep it in step with the godoc annotations on the v1 handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/city": {
            "post": {
                "description": "Persists the selection. The state picks it up asynchronously.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Weather"],
                "summary": "Select a city",
                "parameters": [
                    {
                        "description": "Selected location",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.SaveCityRequest"}
                    }
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/http.SaveCityRequest"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Weather"],
                "summary": "Refresh the selected city",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.StateResponse"}}
                }
            }
        },
        "/api/v1/search": {
            "get": {
                "description": "Runs a search and returns the resulting state. Fewer than 3 characters clears the results.",
                "produces": ["application/json"],
                "tags": ["Weather"],
                "summary": "Search cities",
                "parameters": [
                    {"type": "string", "example": "Lon", "description": "Search text", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.StateResponse"}}
                }
            }
        },
        "/api/v1/state": {
            "get": {
                "description": "Returns the selected city, its current conditions and the latest search results",
                "produces": ["application/json"],
                "tags": ["Weather"],
                "summary": "Current UI state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.StateResponse"}}
                }
            }
        },
        "/api/v1/weather": {
            "get": {
                "description": "Looks up current conditions for a city name or an \"id:<n>\" query",
                "produces": ["application/json"],
                "tags": ["Weather"],
                "summary": "Current conditions by free text",
                "parameters": [
                    {"type": "string", "example": "London", "description": "City name or id:<n>", "name": "q", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.WeatherRecordResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "http.ConditionsResponse": {
            "type": "object",
            "properties": {
                "condition": {"type": "string", "example": "Partly cloudy"},
                "condition_code": {"type": "integer", "example": 1003},
                "feelslike_c": {"type": "number", "example": 9.6},
                "feelslike_f": {"type": "number", "example": 49.3},
                "humidity": {"type": "integer", "example": 82},
                "icon_url": {"type": "string", "example": "https://cdn.weatherapi.com/weather/64x64/day/116.png"},
                "last_updated": {"type": "string", "example": "2023-11-14T22:13:20Z"},
                "last_updated_epoch": {"type": "integer", "example": 1700000000},
                "temp_c": {"type": "number", "example": 11},
                "temp_f": {"type": "number", "example": 51.8},
                "uv": {"type": "number", "example": 3}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Missing required parameter: q"}
            }
        },
        "http.LocationResponse": {
            "type": "object",
            "properties": {
                "country": {"type": "string", "example": "United Kingdom"},
                "id": {"type": "integer", "example": 2801268},
                "lat": {"type": "number", "example": 51.52},
                "lon": {"type": "number", "example": -0.11},
                "name": {"type": "string", "example": "London"},
                "region": {"type": "string", "example": "City of London, Greater London"}
            }
        },
        "http.SaveCityRequest": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "integer", "example": 2801268},
                "name": {"type": "string", "example": "London"}
            }
        },
        "http.StateResponse": {
            "type": "object",
            "properties": {
                "current_weather": {"$ref": "#/definitions/http.ConditionsResponse"},
                "error": {"type": "string"},
                "is_loading": {"type": "boolean"},
                "is_loading_search": {"type": "boolean"},
                "search_results": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/http.WeatherRecordResponse"}
                },
                "selected_city": {"type": "string", "example": "London"}
            }
        },
        "http.WeatherRecordResponse": {
            "type": "object",
            "properties": {
                "current": {"$ref": "#/definitions/http.ConditionsResponse"},
                "location": {"$ref": "#/definitions/http.LocationResponse"}
            }
        }
    },
    "tags": [
        {"description": "City search, selection and current conditions", "name": "Weather"}
    ]
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Weather Lookup API",
	Description:      "City search, persisted selection and current conditions backed by WeatherAPI.com.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
