package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Terminus API",
        "description": "Legal deadline tracking: business-day projection over a configurable holiday calendar",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Terms", "description": "Term lifecycle and views"},
        {"name": "Settings", "description": "Holiday calendar, thresholds and recalculation"},
        {"name": "Transfer", "description": "CSV interchange and PDF reporting"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/terms": {
            "get": {
                "tags": ["Terms"],
                "summary": "List all terms",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Terms"],
                "summary": "Register a term",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveTermRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/terms/{id}": {
            "get": {
                "tags": ["Terms"],
                "summary": "Get a term",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Terms"],
                "summary": "Replace a term",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveTermRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Terms"],
                "summary": "Delete a term",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/terms/clear": {
            "post": {
                "tags": ["Terms"],
                "summary": "Delete every term",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClearTermsRequest"}}
                ],
                "responses": {
                    "204": {"description": "Cleared"},
                    "412": {"description": "Missing confirmation token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/terms/query": {
            "get": {
                "tags": ["Terms"],
                "summary": "Query terms through a view",
                "parameters": [
                    {"name": "view", "in": "query", "type": "string", "enum": ["chronological", "due_soon"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["pending", "urgent", "warning", "past_due", "all"]},
                    {"name": "page", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/terms/export": {
            "get": {
                "tags": ["Transfer"],
                "summary": "Export all terms as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV payload"}
                }
            }
        },
        "/api/v1/terms/export/pdf": {
            "get": {
                "tags": ["Transfer"],
                "summary": "Export the due-soon report as PDF",
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF payload"}
                }
            }
        },
        "/api/v1/terms/import": {
            "post": {
                "tags": ["Transfer"],
                "summary": "Import terms from a CSV file",
                "consumes": ["multipart/form-data", "text/csv"],
                "responses": {
                    "200": {"description": "Import summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Schema mismatch", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/exports/{name}": {
            "get": {
                "tags": ["Transfer"],
                "summary": "Download an archived export snapshot",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File payload"},
                    "400": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Archive not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/term-types": {
            "get": {
                "tags": ["Terms"],
                "summary": "List the term-type catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get the settings record",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Replace the settings record",
                "parameters": [
                    {"name": "recalc", "in": "query", "type": "boolean"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/settings/reset": {
            "post": {
                "tags": ["Settings"],
                "summary": "Restore the built-in settings defaults",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/recalculate": {
            "post": {
                "tags": ["Settings"],
                "summary": "Recalculate every due date",
                "responses": {
                    "200": {"description": "Recalculation summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SaveTermRequest": {
            "type": "object",
            "required": ["case_number", "term_type_code", "start_date"],
            "properties": {
                "case_number": {"type": "string"},
                "court": {"type": "string"},
                "term_type_code": {"type": "string"},
                "term_type_label": {"type": "string"},
                "start_date": {"type": "string", "format": "date"},
                "business_days": {"type": "integer"},
                "due_time": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "ClearTermsRequest": {
            "type": "object",
            "required": ["confirm"],
            "properties": {
                "confirm": {"type": "string"}
            }
        },
        "UpdateSettingsRequest": {
            "type": "object",
            "properties": {
                "holidays_text": {"type": "string"},
                "warning_threshold_days": {"type": "integer"},
                "urgent_threshold_days": {"type": "integer"},
                "page_size": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
