// Package docs registers the OpenAPI document served under /swagger. It
// mirrors the swag annotations on the handlers; update both together.
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
        "/api/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Registration", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        },
        "/api/detect": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["detection"],
                "summary": "Detect a license plate",
                "parameters": [
                    {"description": "Base64 image", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.detectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        },
        "/api/detect/health": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["detection"],
                "summary": "Recognition service health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        },
        "/api/detections": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["detection"],
                "summary": "Detection history of the caller",
                "parameters": [
                    {"type": "integer", "description": "Max entries", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        },
        "/api/fines": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["fines"],
                "summary": "List all fines",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["fines"],
                "summary": "Issue a fine",
                "parameters": [
                    {"description": "Fine", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createFineRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        },
        "/api/fines/check": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["fines"],
                "summary": "Check the fines of a plate",
                "parameters": [
                    {"type": "string", "description": "License plate", "name": "licensePlateNumber", "in": "query", "required": true},
                    {"type": "string", "description": "UNPAID to restrict to unpaid fines", "name": "status", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        },
        "/api/fines/pay/{id}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["fines"],
                "summary": "Pay a fine",
                "parameters": [
                    {"type": "integer", "description": "Fine ID", "name": "id", "in": "path", "required": true},
                    {"description": "Plate", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.payFineRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        },
        "/api/fines/search": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["fines"],
                "summary": "Search fines by partial plate",
                "parameters": [
                    {"type": "string", "description": "Search term", "name": "q", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        },
        "/api/fines/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["fines"],
                "summary": "Fine statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        },
        "/api/fines/{id}/status": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["fines"],
                "summary": "Update the status of a fine",
                "parameters": [
                    {"type": "integer", "description": "Fine ID", "name": "id", "in": "path", "required": true},
                    {"description": "Status", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.apiResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.apiResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness check",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        }
    },
    "definitions": {
        "handler.apiResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {}
            }
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["email", "password", "username"],
            "properties": {
                "username": {"type": "string", "maxLength": 50, "minLength": 3},
                "email": {"type": "string", "maxLength": 100},
                "password": {"type": "string", "maxLength": 72, "minLength": 6},
                "full_name": {"type": "string", "maxLength": 100},
                "role": {"type": "string", "enum": ["CITIZEN", "AUTHORITY"]}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "username": {"type": "string", "description": "username or email"},
                "password": {"type": "string"}
            }
        },
        "handler.detectRequest": {
            "type": "object",
            "required": ["image_data"],
            "properties": {
                "image_data": {"type": "string"}
            }
        },
        "handler.createFineRequest": {
            "type": "object",
            "required": ["amount", "license_plate_number", "violation_type"],
            "properties": {
                "license_plate_number": {"type": "string", "maxLength": 20},
                "amount": {"type": "number"},
                "violation_type": {"type": "string", "maxLength": 100},
                "description": {"type": "string", "maxLength": 500},
                "violation_date": {"type": "string"}
            }
        },
        "handler.payFineRequest": {
            "type": "object",
            "required": ["license_plate_number"],
            "properties": {
                "license_plate_number": {"type": "string", "maxLength": 20}
            }
        },
        "handler.updateStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["UNPAID", "PAID"]}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Smart LPD Enforcement API",
	Description:      "License plate detection and traffic fine management.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
