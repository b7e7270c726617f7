// Package docs holds the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ReadinessStatus"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.ReadinessStatus"}}
                }
            }
        },
        "/v1/brands/clean": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["brands"],
                "summary": "Reduce brands to id and name",
                "parameters": [
                    {"in": "body", "name": "brands", "required": true, "schema": {"type": "array", "items": {"type": "object"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Brand"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/v1/categories": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Import category records",
                "parameters": [
                    {"in": "body", "name": "records", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/models.FlatRecord"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ImportSummary"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/v1/categories/tree": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Get the category tree",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Node"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/v1/categories/tree/preview": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Build a category tree",
                "parameters": [
                    {"in": "body", "name": "records", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/models.FlatRecord"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Node"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/v1/categories/tree/snapshots": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Publish a category tree snapshot",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.TreeSnapshot"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "common.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        },
        "handlers.ReadinessStatus": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "services": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "models.Brand": {
            "type": "object",
            "properties": {
                "id": {},
                "name": {}
            }
        },
        "models.LocalizedName": {
            "type": "object",
            "properties": {
                "ar": {"type": "string"},
                "en": {"type": "string"}
            }
        },
        "models.FlatRecord": {
            "type": "object",
            "required": ["id", "name"],
            "properties": {
                "id": {"type": "string"},
                "name": {"$ref": "#/definitions/models.LocalizedName"},
                "parentId": {"type": "string"}
            }
        },
        "models.Node": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"$ref": "#/definitions/models.LocalizedName"},
                "subCategories": {"type": "array", "items": {"$ref": "#/definitions/models.Node"}}
            }
        },
        "models.ImportSummary": {
            "type": "object",
            "properties": {
                "tenant_id": {"type": "string"},
                "records": {"type": "integer"},
                "roots": {"type": "integer"},
                "nodes": {"type": "integer"},
                "unreachable": {"type": "array", "items": {"type": "string"}},
                "collisions": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.TreeSnapshot": {
            "type": "object",
            "properties": {
                "tenant_id": {"type": "string"},
                "bucket": {"type": "string"},
                "object_name": {"type": "string"},
                "url": {"type": "string"},
                "roots": {"type": "integer"},
                "nodes": {"type": "integer"},
                "size": {"type": "integer"},
                "created_at": {"type": "string", "format": "date-time"}
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
	Title:            "Elaf Catalog API",
	Description:      "Builds nested category trees from flat category exports and cleans brand exports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
