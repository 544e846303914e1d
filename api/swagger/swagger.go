package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "DevEvent API",
        "description": "Create and list developer events.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Events", "description": "Developer event publishing"},
        {"name": "Operations", "description": "Probes and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Operations"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Operations"],
                "summary": "Readiness check against database and cache",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is down"}
                }
            }
        },
        "/api/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List events, newest first",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/EventListEnvelope"}},
                    "500": {"description": "Listing failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Events"],
                "summary": "Create event",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "title", "in": "formData", "type": "string", "required": true},
                    {"name": "description", "in": "formData", "type": "string", "required": true},
                    {"name": "overview", "in": "formData", "type": "string", "required": true},
                    {"name": "venue", "in": "formData", "type": "string", "required": true},
                    {"name": "location", "in": "formData", "type": "string", "required": true},
                    {"name": "date", "in": "formData", "type": "string", "required": true, "description": "Any common date format, stored as YYYY-MM-DD"},
                    {"name": "time", "in": "formData", "type": "string", "required": true, "description": "HH:MM with optional AM/PM, stored as 24h HH:MM"},
                    {"name": "mode", "in": "formData", "type": "string", "required": true, "enum": ["online", "offline", "hybrid"]},
                    {"name": "audience", "in": "formData", "type": "string", "required": true},
                    {"name": "agenda", "in": "formData", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "required": true},
                    {"name": "organizer", "in": "formData", "type": "string", "required": true},
                    {"name": "tags", "in": "formData", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "required": true},
                    {"name": "image", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/EventEnvelope"}},
                    "400": {"description": "MISSING_IMAGE, VALIDATION_ERROR, INVALID_DATE_FORMAT or INVALID_TIME_FORMAT", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "PERSISTENCE_FAILED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "UPLOAD_FAILED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/events/export": {
            "get": {
                "tags": ["Events"],
                "summary": "Export events as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Document", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/events/{slug}": {
            "get": {
                "tags": ["Events"],
                "summary": "Get event by slug",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "slug", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/EventEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Event": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "title": {"type": "string"},
                "slug": {"type": "string"},
                "description": {"type": "string"},
                "overview": {"type": "string"},
                "image": {"type": "string", "format": "uri"},
                "venue": {"type": "string"},
                "location": {"type": "string"},
                "date": {"type": "string", "example": "2025-03-15"},
                "time": {"type": "string", "example": "18:30"},
                "mode": {"type": "string", "enum": ["online", "offline", "hybrid"]},
                "audience": {"type": "string"},
                "agenda": {"type": "array", "items": {"type": "string"}},
                "organizer": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "retryable": {"type": "boolean"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        },
        "EventEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/Event"},
                "meta": {"type": "object"}
            }
        },
        "EventListEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/Event"}},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
