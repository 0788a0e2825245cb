// Package docs provides the generated Swagger specification for the read
// API. Regenerate with: swag init -g cmd/pipeline-service/main.go -o internal/server/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/stocks": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stocks"],
                "summary": "List tracked stocks",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/stocks/{ticker}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stocks"],
                "summary": "Get a stock by ticker",
                "parameters": [{"type": "string", "name": "ticker", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/daily-prices": {
            "get": {
                "produces": ["application/json"],
                "tags": ["prices"],
                "summary": "List daily price bars",
                "parameters": [{"type": "string", "name": "ticker", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/intraday-prices": {
            "get": {
                "produces": ["application/json"],
                "tags": ["prices"],
                "summary": "List intraday price bars",
                "parameters": [{"type": "string", "name": "ticker", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/latest-price/{ticker}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["prices"],
                "summary": "Get the latest daily bar",
                "parameters": [{"type": "string", "name": "ticker", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/news": {
            "get": {
                "produces": ["application/json"],
                "tags": ["news"],
                "summary": "List news articles",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "List corporate events",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/statistics": {
            "get": {
                "produces": ["application/json"],
                "tags": ["statistics"],
                "summary": "Get fetch statistics",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/fetch-logs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["statistics"],
                "summary": "List fetch audit logs",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Market Data Pipeline API",
	Description:      "Read-only API over ingested market data.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
