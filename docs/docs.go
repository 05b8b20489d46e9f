// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with `swag init -g cmd/server/main.go`.
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
        "/users": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register user",
                "parameters": [
                    {"description": "Registration request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.RegisterResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Users"],
                "summary": "Delete account",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/tokens": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "List sessions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.TokensResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.LoginRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/tokens/{jwtId}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Revoke session",
                "parameters": [{"type": "string", "description": "Token id", "name": "jwtId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/ledgers": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Ledgers"],
                "summary": "List ledgers",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.LedgersResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Ledgers"],
                "summary": "Create ledger",
                "parameters": [
                    {"description": "Ledger", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateLedgerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.CreatedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/ledgers/{ledgerId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Ledgers"],
                "summary": "Get ledger",
                "parameters": [{"type": "string", "description": "Ledger id", "name": "ledgerId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Ledger"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/ledgers/{ledgerId}/permissions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Ledgers"],
                "summary": "List ledger grants",
                "parameters": [{"type": "string", "description": "Ledger id", "name": "ledgerId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.PermissionsResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Ledgers"],
                "summary": "Share ledger",
                "parameters": [
                    {"type": "string", "description": "Ledger id", "name": "ledgerId", "in": "path", "required": true},
                    {"description": "Grantee", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.ShareLedgerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.CreatedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/ledgers/{ledgerId}/permissions/{userId}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Ledgers"],
                "summary": "Unshare ledger",
                "parameters": [
                    {"type": "string", "description": "Ledger id", "name": "ledgerId", "in": "path", "required": true},
                    {"type": "string", "description": "Grantee id", "name": "userId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.CreatedResponse": {"type": "object", "properties": {"id": {"type": "string"}}},
        "handlers.RegisterResponse": {"type": "object", "properties": {"userId": {"type": "string"}}},
        "handlers.TokenResponse": {"type": "object", "properties": {"token": {"type": "string"}}},
        "handlers.TokensResponse": {"type": "object", "properties": {"tokens": {"type": "array", "items": {"$ref": "#/definitions/models.Token"}}}},
        "handlers.LedgersResponse": {"type": "object", "properties": {"ledgers": {"type": "array", "items": {"$ref": "#/definitions/models.Ledger"}}}},
        "handlers.PermissionsResponse": {"type": "object", "properties": {"permissions": {"type": "array", "items": {"$ref": "#/definitions/models.LedgerPermission"}}}},
        "models.User": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "verified": {"type": "boolean"},
                "created": {"type": "string"},
                "lastUpdated": {"type": "string"}
            }
        },
        "models.Token": {
            "type": "object",
            "properties": {
                "jwtId": {"type": "string"},
                "issued": {"type": "string"},
                "subject": {"type": "string"}
            }
        },
        "models.Ledger": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "defaultCurrency": {"type": "string"},
                "created": {"type": "string"},
                "lastUpdated": {"type": "string"}
            }
        },
        "models.LedgerPermission": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "ledgerId": {"type": "string"},
                "userId": {"type": "string"},
                "created": {"type": "string"}
            }
        },
        "services.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "services.RegisterRequest": {
            "type": "object",
            "required": ["email", "name", "password"],
            "properties": {
                "name": {"type": "string", "maxLength": 128, "minLength": 6, "example": "robert"},
                "email": {"type": "string", "example": "bob@test.com"},
                "password": {"type": "string", "minLength": 12, "example": "password123456"}
            }
        },
        "services.LoginRequest": {
            "type": "object",
            "required": ["name", "password"],
            "properties": {
                "name": {"type": "string", "example": "robert"},
                "password": {"type": "string", "example": "password123456"}
            }
        },
        "services.CreateLedgerRequest": {
            "type": "object",
            "required": ["defaultCurrency", "name"],
            "properties": {
                "name": {"type": "string", "maxLength": 128, "example": "Household"},
                "defaultCurrency": {"type": "string", "example": "USD"}
            }
        },
        "services.ShareLedgerRequest": {
            "type": "object",
            "required": ["userId"],
            "properties": {
                "userId": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "UnderBudget Backend API",
	Description:      "User accounts, session tokens and shared ledgers",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
