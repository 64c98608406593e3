// Package comitte holds the swagger specification for the comitte identity
// service, registered with swag so the /swagger/ UI can serve it.
package comitte

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "LS Softworks",
            "url": "https://github.com/ls-softworks/comitte"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/livez": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/comittesdk.HealthResponse"}
                    }
                }
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/comittesdk.HealthResponse"}
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {"$ref": "#/definitions/comittesdk.HealthResponse"}
                    }
                }
            }
        },
        "/v1/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Login",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/comittesdk.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/comittesdk.LoginResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/comittesdk.ValidationErrorResponse"}
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {"$ref": "#/definitions/comittesdk.ErrorResponse"}
                    }
                }
            }
        },
        "/v1/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Logout",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/comittesdk.LogoutResponse"}
                    }
                }
            }
        },
        "/v1/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register",
                "parameters": [
                    {
                        "description": "New member profile",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/comittesdk.RegisterRequest"}
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {"$ref": "#/definitions/comittesdk.MemberResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/comittesdk.ValidationErrorResponse"}
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {"$ref": "#/definitions/comittesdk.ErrorResponse"}
                    }
                }
            }
        },
        "/v1/auth/session-status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Session status",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/comittesdk.SessionStatusResponse"}
                    }
                }
            }
        },
        "/v1/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Profile"],
                "summary": "Current member profile",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/comittesdk.UserSummary"}
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {"$ref": "#/definitions/comittesdk.ErrorResponse"}
                    }
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Profile"],
                "summary": "Update profile",
                "parameters": [
                    {
                        "description": "Fields to change",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/comittesdk.UpdateProfileRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/comittesdk.MemberResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/comittesdk.ValidationErrorResponse"}
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {"$ref": "#/definitions/comittesdk.ErrorResponse"}
                    }
                }
            }
        },
        "/v1/members/{id}/roles": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Roles"],
                "summary": "Assign role",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Member id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Role to grant",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/comittesdk.AssignRoleRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/comittesdk.MessageResponse"}
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {"$ref": "#/definitions/comittesdk.ErrorResponse"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/comittesdk.ErrorResponse"}
                    }
                }
            }
        },
        "/v1/password/request": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Password"],
                "summary": "Request password reset",
                "parameters": [
                    {
                        "description": "Account identifier",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/comittesdk.PasswordResetRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/comittesdk.MessageResponse"}
                    }
                }
            }
        },
        "/v1/password/reset": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Password"],
                "summary": "Complete password reset",
                "parameters": [
                    {
                        "description": "Reset credential and new password",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/comittesdk.PasswordUpdateRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/comittesdk.MessageResponse"}
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {"$ref": "#/definitions/comittesdk.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "comittesdk.AssignRoleRequest": {
            "type": "object",
            "properties": {
                "roleName": {"type": "string"}
            }
        },
        "comittesdk.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "comittesdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "comittesdk.LoginRequest": {
            "type": "object",
            "properties": {
                "usernameOrEmail": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "comittesdk.LoginResponse": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string"},
                "tokenType": {"type": "string"},
                "expiresIn": {"type": "integer"},
                "user": {"$ref": "#/definitions/comittesdk.UserSummary"}
            }
        },
        "comittesdk.LogoutResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "timestamp": {"type": "integer"}
            }
        },
        "comittesdk.MemberResponse": {
            "type": "object",
            "properties": {
                "memberId": {"type": "integer"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "mobile": {"type": "string"}
            }
        },
        "comittesdk.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "comittesdk.PasswordResetRequest": {
            "type": "object",
            "properties": {
                "usernameOrEmail": {"type": "string"}
            }
        },
        "comittesdk.PasswordUpdateRequest": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "usernameOrEmail": {"type": "string"},
                "otp": {"type": "string"},
                "newPassword": {"type": "string"}
            }
        },
        "comittesdk.RegisterRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "name": {"type": "string"},
                "mobile": {"type": "string"}
            }
        },
        "comittesdk.SessionStatusResponse": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "remainingSeconds": {"type": "integer"},
                "message": {"type": "string"}
            }
        },
        "comittesdk.UpdateProfileRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "mobile": {"type": "string"}
            }
        },
        "comittesdk.UserSummary": {
            "type": "object",
            "properties": {
                "memberId": {"type": "integer"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "mobile": {"type": "string"},
                "roleIds": {"type": "array", "items": {"type": "integer"}},
                "roleNames": {"type": "array", "items": {"type": "string"}},
                "authorityNames": {"type": "array", "items": {"type": "string"}}
            }
        },
        "comittesdk.ValidationErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {
                    "type": "object",
                    "additionalProperties": {"type": "string"}
                }
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
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Comitte Identity Service API",
	Description:      "Token-based authentication for the comitte committee backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
