package web

// errors.go maps technical errors onto user-facing messages so API
// clients get something actionable while the full error is logged
// server-side with the request ID for correlation.

import (
	"encoding/json"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/paleoclim/noaapaleo/internal/logging"
)

// UserMessage is the client-facing rendering of an error.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
	Status  int    // HTTP status to respond with
}

// errorPattern maps a technical error substring (case-insensitive) to a
// user message. First match wins, so specific patterns come first.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "missing required fields",
		msg: UserMessage{
			Message: "The study's metadata document is incomplete",
			Action:  "Verify the study id; this study cannot be ingested as-is",
			Code:    "MD001",
			Status:  http.StatusUnprocessableEntity,
		},
	},
	{
		pattern: "not found",
		msg: UserMessage{
			Message: "No study exists for this id",
			Action:  "Check the NOAA study id and try again",
			Code:    "MD002",
			Status:  http.StatusNotFound,
		},
	},
	{
		pattern: "cache miss",
		msg: UserMessage{
			Message: "No cached dataset exists yet for this study",
			Action:  "Request the dataset endpoint to build it first",
			Code:    "CA001",
			Status:  http.StatusNotFound,
		},
	},
	{
		pattern: "ambiguous",
		msg: UserMessage{
			Message: "The study has multiple candidate data files",
			Action:  "Pick a file explicitly via the selection strategy",
			Code:    "FF001",
			Status:  http.StatusConflict,
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "This file format is not supported",
			Action:  "Only txt and csv data files can be ingested",
			Code:    "FF002",
			Status:  http.StatusUnprocessableEntity,
		},
	},
	{
		pattern: "not tabular",
		msg: UserMessage{
			Message: "The data file could not be parsed as a table",
			Action:  "Inspect the raw file; its layout is irregular",
			Code:    "FF003",
			Status:  http.StatusUnprocessableEntity,
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The archive did not respond in time",
			Action:  "Try again later; the NOAA archive may be slow",
			Code:    "NET001",
			Status:  http.StatusBadGateway,
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "The archive is unreachable",
			Action:  "Try again later; the NOAA archive may be down",
			Code:    "NET002",
			Status:  http.StatusBadGateway,
		},
	},
}

var defaultMessage = UserMessage{
	Message: "Something went wrong while building the dataset",
	Action:  "Check the server logs for details",
	Code:    "GEN001",
	Status:  http.StatusInternalServerError,
}

// MapError translates a technical error into a UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error and writes the mapped user
// message as JSON.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", userMsg.Status,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", chimw.GetReqID(r.Context()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(userMsg.Status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}
