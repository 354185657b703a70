package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Tutoring Portal API",
        "description": "Student-tutor matching, update logs, session history and reporting",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Accounts and tokens"},
        {"name": "Requests", "description": "Tutoring request queue"},
        {"name": "Assignments", "description": "Accept/reject and the student registry"},
        {"name": "Updates", "description": "Per-student update log"},
        {"name": "Sessions", "description": "Session history and scheduling"},
        {"name": "Tutors", "description": "Public tutor directory"},
        {"name": "Applications", "description": "Tutor applications"},
        {"name": "Dashboard", "description": "Role dashboards"},
        {"name": "Reports", "description": "Asynchronous report generation"},
        {"name": "Sync", "description": "Change stream"}
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
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a new account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"},
                    "504": {"description": "Registration timed out, retry"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate",
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
                "tags": ["Authentication"],
                "summary": "Rotate tokens",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tutors": {
            "get": {
                "tags": ["Tutors"],
                "summary": "Tutor directory",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests": {
            "post": {
                "tags": ["Requests"],
                "summary": "Submit a tutoring request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitRequestPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Requests"],
                "summary": "Full queue (admin)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tutor/requests": {
            "get": {
                "tags": ["Requests"],
                "summary": "The tutor's pending queue",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tutor/requests/{id}/accept": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Accept a request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Request addressed to a different tutor"},
                    "404": {"description": "Request not found"}
                }
            }
        },
        "/tutor/requests/{id}/reject": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Reject a request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/tutor/students": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Accepted students",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tutor/students/{email}/updates": {
            "post": {
                "tags": ["Updates"],
                "summary": "Post a student update",
                "parameters": [
                    {"name": "email", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PostUpdatePayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Updates"],
                "summary": "A student's update log",
                "parameters": [
                    {"name": "email", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student/updates": {
            "get": {
                "tags": ["Updates"],
                "summary": "My updates, newest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student/updates/{id}/read": {
            "post": {
                "tags": ["Updates"],
                "summary": "Mark an update read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/tutor/students/{email}/sessions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Log a completed session",
                "parameters": [
                    {"name": "email", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LogSessionPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "My session history",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a report job",
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Reports"],
                "summary": "My report jobs",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/download/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished report",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Artifact stream"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/sync/stream": {
            "get": {
                "tags": ["Sync"],
                "summary": "Server-sent change events",
                "parameters": [
                    {"name": "entity", "in": "query", "required": true, "type": "string"},
                    {"name": "key", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Event stream"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"},
                "role": {"type": "string", "enum": ["STUDENT", "TUTOR"]}
            },
            "required": ["email", "password", "full_name", "role"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "SubmitRequestPayload": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "grade_level": {"type": "string"},
                "school": {"type": "string"},
                "subjects": {"type": "array", "items": {"type": "string"}},
                "learning_style": {"type": "string"},
                "learning_disabilities": {"type": "string"},
                "frequency": {"type": "string"},
                "motivation": {"type": "string"},
                "requested_tutor": {"type": "string"},
                "tutor_name": {"type": "string"}
            },
            "required": ["full_name", "email", "grade_level", "school", "subjects", "learning_style", "frequency", "motivation", "requested_tutor", "tutor_name"]
        },
        "PostUpdatePayload": {
            "type": "object",
            "properties": {
                "update_type": {"type": "string", "enum": ["progress", "assignment", "note", "session_feedback", "goals"]},
                "title": {"type": "string"},
                "content": {"type": "string"}
            },
            "required": ["update_type", "title", "content"]
        },
        "LogSessionPayload": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "subject": {"type": "string"},
                "session_date": {"type": "string"},
                "duration": {"type": "string"},
                "topics_covered": {"type": "string"},
                "comments": {"type": "string"},
                "homework_assigned": {"type": "string"},
                "next_topics": {"type": "string"},
                "student_engagement_rating": {"type": "integer"}
            },
            "required": ["title", "subject", "session_date", "duration"]
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
