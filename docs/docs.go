// Package docs registers the OpenAPI description served at /swagger.
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
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"Bearer": []}],
    "paths": {
        "/landing": {"get": {"tags": ["menu"], "summary": "Featured kitchens preview", "responses": {"200": {"description": "OK"}}}},
        "/menu/{cooker_id}": {"get": {"tags": ["menu"], "summary": "A chef's menu", "parameters": [{"name": "cooker_id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/menu": {"post": {"tags": ["menu"], "summary": "Add a menu item", "responses": {"201": {"description": "Created"}}}},
        "/menu/{id}": {
            "put": {"tags": ["menu"], "summary": "Edit a menu item", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["menu"], "summary": "Remove a menu item", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/reviews": {
            "get": {"tags": ["reviews"], "summary": "Reviews with customer and chef profiles", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["reviews"], "summary": "Review a chef", "responses": {"201": {"description": "Created"}}}
        },
        "/auth/signup": {"post": {"tags": ["auth"], "summary": "Create an account", "responses": {"201": {"description": "Created"}}}},
        "/auth/signin": {"post": {"tags": ["auth"], "summary": "Sign in with email and password", "responses": {"200": {"description": "OK"}, "403": {"description": "Email not confirmed"}}}},
        "/auth/signout": {"post": {"tags": ["auth"], "summary": "End the session", "responses": {"200": {"description": "OK"}}}},
        "/auth/resend": {"post": {"tags": ["auth"], "summary": "Resend the confirmation email", "responses": {"200": {"description": "OK"}}}},
        "/auth/confirm": {"post": {"tags": ["auth"], "summary": "Confirm an email address", "responses": {"200": {"description": "OK"}}}},
        "/auth/oauth/{provider}": {"get": {"tags": ["auth"], "summary": "Redirect to an OAuth provider", "parameters": [{"name": "provider", "in": "path", "required": true, "type": "string"}], "responses": {"302": {"description": "Found"}}}},
        "/auth/me": {"get": {"tags": ["auth"], "summary": "The signed-in principal", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/orders": {
            "get": {"tags": ["orders"], "summary": "The caller's orders", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["orders"], "summary": "Place an order", "responses": {"201": {"description": "Created"}, "402": {"description": "Payment declined"}}}
        },
        "/orders/{id}": {
            "get": {"tags": ["orders"], "summary": "Order with items and delivery", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["orders"], "summary": "Delete an order and its items", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Order left without items"}}}
        },
        "/orders/{id}/status": {"put": {"tags": ["orders"], "summary": "Move an order to a new status", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/cooker/orders": {"get": {"tags": ["orders"], "summary": "The signed-in chef's orders", "responses": {"200": {"description": "OK"}}}},
        "/reports": {"post": {"tags": ["reports"], "summary": "Report a user, kitchen, dish, order or review", "responses": {"201": {"description": "Created"}}}},
        "/notifications": {"get": {"tags": ["notifications"], "summary": "Recent transient notifications", "responses": {"200": {"description": "OK"}}}},
        "/admin/users": {"get": {"tags": ["admin"], "summary": "All accounts", "responses": {"200": {"description": "OK"}}}},
        "/admin/users/{id}/role": {"put": {"tags": ["admin"], "summary": "Change a user's role", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/admin/users/{id}": {"delete": {"tags": ["admin"], "summary": "Delete an account", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/admin/reports": {"get": {"tags": ["admin"], "summary": "All reports", "responses": {"200": {"description": "OK"}}}},
        "/admin/reports/{id}/status": {"put": {"tags": ["admin"], "summary": "Change a report's status", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/admin/audit/{entity_id}": {"get": {"tags": ["admin"], "summary": "Audit trail of an entity", "parameters": [{"name": "entity_id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "homecook API",
	Description:      "Order, menu, review and admin endpoints for the homecook front end.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
