package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "FOIA Desk API",
        "description": "Public records request tracking for a single agency",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Requests", "description": "FOIA request lifecycle"},
        {"name": "Reports", "description": "Detail reports and agency statistics"},
        {"name": "Exports", "description": "Asynchronous register exports"},
        {"name": "Auth", "description": "Officer sessions"}
    ],
    "paths": {
        "/requests": {
            "get": {
                "tags": ["Requests"],
                "summary": "List requests",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "description": "SUBMITTED, ASSIGNED, FULFILLED, DENIED or APPEALED"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Requests"],
                "summary": "Submit a request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitRequestRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/overdue": {
            "get": {
                "tags": ["Requests"],
                "summary": "List requests past their statutory deadline",
                "parameters": [
                    {"name": "as_of", "in": "query", "type": "string", "description": "evaluate deadlines at this date, YYYY-MM-DD"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/{tracking}": {
            "get": {
                "tags": ["Requests"],
                "summary": "Get one request",
                "parameters": [
                    {"name": "tracking", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/{tracking}/assign": {
            "post": {
                "tags": ["Requests"],
                "summary": "Assign a request to an officer",
                "parameters": [
                    {"name": "tracking", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignRequestRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/{tracking}/fulfill": {
            "post": {
                "tags": ["Requests"],
                "summary": "Release documents and close the request",
                "parameters": [
                    {"name": "tracking", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FulfillRequestRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/{tracking}/deny": {
            "post": {
                "tags": ["Requests"],
                "summary": "Deny the request citing exemptions",
                "parameters": [
                    {"name": "tracking", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DenyRequestRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/{tracking}/appeal": {
            "post": {
                "tags": ["Requests"],
                "summary": "Contest a denial",
                "parameters": [
                    {"name": "tracking", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AppealRequestRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/{tracking}/notes": {
            "post": {
                "tags": ["Requests"],
                "summary": "Append an internal note",
                "parameters": [
                    {"name": "tracking", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddNoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/{tracking}/report": {
            "get": {
                "tags": ["Reports"],
                "summary": "Request detail report",
                "parameters": [
                    {"name": "tracking", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stats": {
            "get": {
                "tags": ["Reports"],
                "summary": "Agency-wide statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/export": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a register export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/export/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "produces": ["text/csv", "application/pdf"],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Officer login",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate the refresh token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke the session",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/password": {
            "post": {
                "tags": ["Auth"],
                "summary": "Change the password",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current officer",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Request": {
            "type": "object",
            "properties": {
                "tracking_number": {"type": "string"},
                "requester": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string", "enum": ["SUBMITTED", "ASSIGNED", "FULFILLED", "DENIED", "APPEALED"]},
                "assigned_officer": {"type": "string"},
                "submitted_at": {"type": "string"},
                "due_at": {"type": "string"},
                "resolved_at": {"type": "string"},
                "appealed_at": {"type": "string"},
                "documents": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/Document"}
                },
                "exemptions_cited": {
                    "type": "array",
                    "items": {"type": "integer"}
                },
                "denial_reason": {"type": "string"},
                "appeal_grounds": {"type": "string"},
                "notes": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/Note"}
                }
            }
        },
        "Document": {
            "type": "object",
            "properties": {
                "ref": {"type": "string"},
                "description": {"type": "string"},
                "redacted": {"type": "boolean"},
                "redaction_rationale": {"type": "string"}
            }
        },
        "Note": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "author": {"type": "string"},
                "text": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "SubmitRequestRequest": {
            "type": "object",
            "properties": {
                "requester": {"type": "string"},
                "description": {"type": "string"}
            },
            "required": ["requester", "description"]
        },
        "AssignRequestRequest": {
            "type": "object",
            "properties": {
                "officer": {"type": "string"}
            },
            "required": ["officer"]
        },
        "FulfillRequestRequest": {
            "type": "object",
            "properties": {
                "documents": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/DocumentPayload"}
                }
            },
            "required": ["documents"]
        },
        "DocumentPayload": {
            "type": "object",
            "properties": {
                "ref": {"type": "string"},
                "description": {"type": "string"},
                "redacted": {"type": "boolean"},
                "redactionRationale": {"type": "string"}
            },
            "required": ["ref"]
        },
        "DenyRequestRequest": {
            "type": "object",
            "properties": {
                "exemptions": {
                    "type": "array",
                    "items": {"type": "integer", "minimum": 1, "maximum": 9}
                },
                "reason": {"type": "string"}
            },
            "required": ["exemptions", "reason"]
        },
        "AppealRequestRequest": {
            "type": "object",
            "properties": {
                "grounds": {"type": "string"}
            },
            "required": ["grounds"]
        },
        "AddNoteRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"}
            },
            "required": ["text"]
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["requests", "overdue", "statistics", "exemptions"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["type", "format"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
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
                "pagination": {"type": "object"},
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
