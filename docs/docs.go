// Package docs registers the pos-service swagger spec with swag.
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
        "/sessions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Open a POS session",
                "parameters": [
                    {"description": "restaurant", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/main.OpenSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Current draft with totals",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/sessions/{id}/catalog": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Cached catalog, optionally filtered",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "menu category", "name": "category", "in": "query"},
                    {"type": "string", "description": "menu name/category or table number", "name": "search", "in": "query"},
                    {"type": "boolean", "description": "active menu items only", "name": "active", "in": "query"},
                    {"type": "string", "description": "table status", "name": "table_status", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/sessions/{id}/table": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["draft"],
                "summary": "Bind the draft to a table (drops unsaved lines)",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "id", "in": "path", "required": true},
                    {"description": "table", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.SelectTableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/sessions/{id}/items": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["draft"],
                "summary": "Add a menu item (increments an existing line)",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "id", "in": "path", "required": true},
                    {"description": "menu item", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.AddItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/sessions/{id}/place": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["checkout"],
                "summary": "Submit the draft to the order backend",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "id", "in": "path", "required": true},
                    {"description": "order type", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/main.PlaceOrderRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/sessions/{id}/payment": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["checkout"],
                "summary": "Take payment for a placed order",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "id", "in": "path", "required": true},
                    {"description": "payment", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.PaymentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Auto-refreshed order list",
                "parameters": [
                    {"type": "string", "description": "order status", "name": "status", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/reports/pnl": {
            "get": {
                "produces": ["application/json", "text/csv"],
                "tags": ["reports"],
                "summary": "Profit and loss over [from, to] (dates inclusive, UTC)",
                "parameters": [
                    {"type": "string", "description": "YYYY-MM-DD, defaults to today", "name": "from", "in": "query"},
                    {"type": "string", "description": "YYYY-MM-DD, defaults to from", "name": "to", "in": "query"},
                    {"type": "string", "description": "csv to export", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "httpx.Envelope": {
            "type": "object",
            "properties": {
                "data": {},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "main.OpenSessionRequest": {
            "type": "object",
            "properties": {
                "restaurant_id": {"type": "string", "example": "64f1c0a2e4b0a1b2c3d4e5f6"}
            }
        },
        "main.SelectTableRequest": {
            "type": "object",
            "required": ["table_id"],
            "properties": {
                "table_id": {"type": "string"}
            }
        },
        "main.AddItemRequest": {
            "type": "object",
            "required": ["menu_item_id"],
            "properties": {
                "menu_item_id": {"type": "string"}
            }
        },
        "main.PlaceOrderRequest": {
            "type": "object",
            "properties": {
                "order_type": {"type": "string", "example": "dine_in"}
            }
        },
        "main.PaymentRequest": {
            "type": "object",
            "required": ["payment_method"],
            "properties": {
                "amount_paid": {"type": "string", "example": "3000.00"},
                "payment_method": {"type": "string", "example": "cash"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "POS front desk API",
	Description:      "Point-of-sale sessions in front of the restaurant order backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
