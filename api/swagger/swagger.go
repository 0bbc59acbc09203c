package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Registration Review Console API",
        "description": "Review, approve and reject school registration requests.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [
        {"BearerAuth": []}
    ],
    "tags": [
        {"name": "Registrations", "description": "Registration request list"},
        {"name": "Detail", "description": "Open registration and its status"},
        {"name": "Columns", "description": "Column layout and language"}
    ],
    "paths": {
        "/registrations": {
            "get": {
                "tags": ["Registrations"],
                "summary": "List registration requests",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "date", "in": "query", "type": "string", "format": "date"},
                    {"name": "lang", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations/refresh": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Reload registration requests from the registration service",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations/filter": {
            "put": {
                "tags": ["Registrations"],
                "summary": "Set the meeting date filter",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DateFilterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations/selection/toggle": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Toggle row selection mode",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations/selection": {
            "put": {
                "tags": ["Registrations"],
                "summary": "Replace the selected rows",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations/bulk-remove": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Hide the selected rows from the list",
                "description": "View-only removal; the registration service is not called. Without confirmed=true the response carries meta.confirmation and nothing is removed.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkRemoveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations/bulk-reject": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Reject every selected registration",
                "description": "Each row is rejected on its own. meta.outcome lists succeeded and failed ids; failed rows stay selected.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkRejectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Another action is in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations/export": {
            "get": {
                "tags": ["Registrations"],
                "summary": "Download the filtered registration list",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations/{id}/open": {
            "post": {
                "tags": ["Detail"],
                "summary": "Open the detail of a registration",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Registration service failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/detail": {
            "get": {
                "tags": ["Detail"],
                "summary": "Get the open registration detail",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Detail"],
                "summary": "Close the detail view",
                "responses": {
                    "204": {"description": "Closed"}
                }
            }
        },
        "/detail/composition": {
            "put": {
                "tags": ["Detail"],
                "summary": "Open, update or cancel the rejection composer",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CompositionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/detail/status": {
            "post": {
                "tags": ["Detail"],
                "summary": "Change the status of the open registration",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Another action is in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Registration service failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/columns": {
            "get": {
                "tags": ["Columns"],
                "summary": "Get the column layout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Columns"],
                "summary": "Save the column layout",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ColumnsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid layout", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/language": {
            "put": {
                "tags": ["Columns"],
                "summary": "Switch the console language",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LanguageRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unsupported language", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "DateFilterRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date"}
            }
        },
        "SelectionRequest": {
            "type": "object",
            "properties": {
                "ids": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "BulkRemoveRequest": {
            "type": "object",
            "properties": {
                "confirmed": {"type": "boolean"}
            }
        },
        "BulkRejectRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string", "maxLength": 1000}
            }
        },
        "StatusUpdateRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["pending", "scheduled", "in_review", "approved", "rejected"]},
                "rejectionReason": {"type": "string", "maxLength": 1000}
            }
        },
        "CompositionRequest": {
            "type": "object",
            "required": ["mode"],
            "properties": {
                "mode": {"type": "string", "enum": ["reject", "bulk_reject", "cancel"]},
                "reason": {"type": "string", "maxLength": 1000}
            }
        },
        "ColumnInput": {
            "type": "object",
            "required": ["key"],
            "properties": {
                "key": {"type": "string"},
                "label": {"type": "string"},
                "visible": {"type": "boolean"},
                "width": {"type": "integer"},
                "category": {"type": "string"}
            }
        },
        "ColumnsRequest": {
            "type": "object",
            "required": ["columns"],
            "properties": {
                "columns": {"type": "array", "items": {"$ref": "#/definitions/ColumnInput"}}
            }
        },
        "LanguageRequest": {
            "type": "object",
            "required": ["language"],
            "properties": {
                "language": {"type": "string"}
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
