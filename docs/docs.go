// Package docs holds the OpenAPI description served under /swagger/.
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
        "/dashboards": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboards"],
                "summary": "List dashboard jobs",
                "responses": {
                    "200": {"description": "Jobs, newest first", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.JobInfo"}}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["dashboards"],
                "summary": "Run a dashboard",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/model.DashboardRequest"}},
                    {"type": "boolean", "in": "query", "name": "async", "description": "Return 202 and run in the background"}
                ],
                "responses": {
                    "201": {"description": "Dashboard built"},
                    "202": {"description": "Job accepted"},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Source unreadable or schema mismatch", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/dashboards/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboards"],
                "summary": "Get a dashboard job",
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
                "responses": {
                    "200": {"description": "Job", "schema": {"$ref": "#/definitions/model.JobInfo"}},
                    "404": {"description": "Unknown job", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/dashboards/{id}/logs": {
            "get": {"produces": ["application/json"], "tags": ["dashboards"], "summary": "Job log lines",
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
                "responses": {"200": {"description": "Log lines"}, "404": {"description": "Unknown job"}}}
        },
        "/dashboards/{id}/progress": {
            "get": {"produces": ["application/json"], "tags": ["dashboards"], "summary": "Job stage progress",
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
                "responses": {"200": {"description": "Stages"}, "404": {"description": "Unknown job"}}}
        },
        "/dashboards/{id}/summary": {
            "get": {"produces": ["application/json"], "tags": ["dashboards"], "summary": "Job metric summary and cards",
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
                "responses": {"200": {"description": "Summary"}, "404": {"description": "Unknown job"}}}
        },
        "/dashboards/{id}/errors": {
            "get": {"produces": ["application/json"], "tags": ["dashboards"], "summary": "Job errors",
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
                "responses": {"200": {"description": "Errors"}, "404": {"description": "Unknown job"}}}
        },
        "/dashboards/{id}/records": {
            "get": {"produces": ["application/json"], "tags": ["dashboards"], "summary": "Stored plot dataset",
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}, {"type": "integer", "in": "query", "name": "limit"}],
                "responses": {"200": {"description": "Records"}, "404": {"description": "Unknown job"}}}
        },
        "/dashboards/{id}/files": {
            "get": {"produces": ["application/json"], "tags": ["files"], "summary": "Exported files of a job",
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
                "responses": {"200": {"description": "Files"}, "404": {"description": "Unknown job"}}}
        },
        "/dashboards/{id}/rerun": {
            "post": {"produces": ["application/json"], "tags": ["dashboards"], "summary": "Run a stored request again as a new job",
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
                "responses": {"201": {"description": "Dashboard built"}, "404": {"description": "Unknown job"}}}
        },
        "/download/{jobID}/{filename}": {
            "get": {"produces": ["application/octet-stream"], "tags": ["files"], "summary": "Download an exported file",
                "parameters": [{"type": "string", "in": "path", "name": "jobID", "required": true}, {"type": "string", "in": "path", "name": "filename", "required": true}],
                "responses": {"200": {"description": "File"}, "404": {"description": "File not found"}}}
        },
        "/movies": {
            "get": {"produces": ["application/json"], "tags": ["movies"], "summary": "Selectable movie names or codes",
                "parameters": [{"type": "string", "enum": ["name", "code"], "in": "query", "name": "by"}],
                "responses": {"200": {"description": "Values and resolved defaults"}, "422": {"description": "Source unreadable"}}}
        },
        "/variants": {
            "get": {"produces": ["application/json"], "tags": ["dashboards"], "summary": "Dashboard presets",
                "responses": {"200": {"description": "Variants"}}}
        }
    },
    "definitions": {
        "handler.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "model.DashboardRequest": {
            "type": "object",
            "properties": {
                "movies": {"type": "array", "items": {"type": "string"}},
                "codes": {"type": "array", "items": {"type": "string"}},
                "variant": {"type": "string", "enum": ["v1", "v2", "v3", "v4", "v5"]},
                "charts": {"type": "array", "items": {"type": "string", "enum": ["line", "scatter", "boxplot", "dumbbell"]}},
                "aggregation": {"type": "string", "enum": ["daily", "week", "month", "year"]}
            }
        },
        "model.JobInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "spec": {"$ref": "#/definitions/model.DashboardRequest"},
                "status": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Box Office Dashboard API",
	Description:      "Builds box-office dashboards: selection, competing-release windows, metric cards and chart datasets.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
