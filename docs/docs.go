// Package docs is generated by swag init from the handler annotations.
// Regenerate with: swag init -g main.go -o docs
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.LoginRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register",
                "parameters": [
                    {"description": "account", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.RegisterRequest"}}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/auth/accounts": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Buat akun dengan role (admin)",
                "parameters": [
                    {"description": "account", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.CreateAccountRequest"}}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Current user",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/presensi/check-in": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Presensi"],
                "summary": "Check-In dengan lokasi dan foto selfie",
                "parameters": [
                    {"type": "string", "description": "latitude", "name": "latitude", "in": "formData", "required": true},
                    {"type": "string", "description": "longitude", "name": "longitude", "in": "formData", "required": true},
                    {"type": "file", "description": "bukti foto (image/*, max 5MB)", "name": "image", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/presensi.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/presensi.APIError"}}
                }
            }
        },
        "/presensi/check-out": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Presensi"],
                "summary": "Check-Out sesi yang masih terbuka",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/presensi.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/presensi.APIError"}}
                }
            }
        },
        "/presensi/report": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Presensi"],
                "summary": "Laporan presensi",
                "parameters": [
                    {"type": "string", "name": "nama", "in": "query"},
                    {"type": "string", "description": "YYYY-MM-DD", "name": "tanggalMulai", "in": "query"},
                    {"type": "string", "description": "YYYY-MM-DD", "name": "tanggalSelesai", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/presensi.PresensiResponse"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/presensi.APIError"}}
                }
            }
        },
        "/presensi/report/daily": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Presensi"],
                "summary": "Laporan harian",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/presensi.DailyReportResponse"}}}
            }
        },
        "/presensi/report/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "tags": ["Presensi"],
                "summary": "Export laporan ke CSV",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/presensi/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Presensi"],
                "summary": "Detail presensi",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/presensi.PresensiResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/presensi.APIError"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Presensi"],
                "summary": "Ubah presensi (admin)",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/presensi.UpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/presensi.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/presensi.APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/presensi.APIError"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Presensi"],
                "summary": "Hapus presensi (admin)",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/books": {
            "get": {"tags": ["Books"], "summary": "List books", "parameters": [{"type": "string", "name": "q", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Books"], "summary": "Create book", "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/books.BookRequest"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/books/{id}": {
            "get": {"tags": ["Books"], "summary": "Get book", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["Books"], "summary": "Update book", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/books.BookRequest"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["Books"], "summary": "Delete book", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        }
    },
    "definitions": {
        "auth.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "auth.RegisterRequest": {
            "type": "object",
            "properties": {"nama": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}
        },
        "auth.CreateAccountRequest": {
            "type": "object",
            "required": ["role"],
            "properties": {"nama": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}, "role": {"type": "string", "enum": ["mahasiswa", "admin"]}}
        },
        "books.BookRequest": {
            "type": "object",
            "properties": {"title": {"type": "string"}, "author": {"type": "string"}}
        },
        "presensi.APIError": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "presensi.UserRef": {
            "type": "object",
            "properties": {"nama": {"type": "string"}, "email": {"type": "string"}}
        },
        "presensi.PresensiResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "userId": {"type": "integer"},
                "checkIn": {"type": "string"},
                "checkOut": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "buktiFoto": {"type": "string"},
                "user": {"$ref": "#/definitions/presensi.UserRef"}
            }
        },
        "presensi.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "data": {"$ref": "#/definitions/presensi.PresensiResponse"}}
        },
        "presensi.DailyReportResponse": {
            "type": "object",
            "properties": {"reportDate": {"type": "string"}, "data": {"type": "array", "items": {"$ref": "#/definitions/presensi.PresensiResponse"}}}
        },
        "presensi.UpdateRequest": {
            "type": "object",
            "properties": {"checkIn": {"type": "string"}, "checkOut": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Presensi API",
	Description:      "Presensi (check-in/check-out dengan lokasi dan foto), laporan, dan demo books.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
