package meta

import (
	"fmt"
	"net/http"
)

// Custom audience creation constants sent on every create call.
const (
	SubtypeCustom              = "CUSTOM"
	CustomerFileUserProvided   = "USER_PROVIDED_ONLY"
	DefaultInsightsLevel       = "campaign"
	graphErrorFallbackTemplate = "Meta API error (status %d)"
)

// DefaultInsightsFields are the campaign metrics requested by the insights endpoint.
var DefaultInsightsFields = []string{
	"campaign_name",
	"impressions",
	"clicks",
	"spend",
	"cpc",
	"ctr",
	"date_start",
	"date_stop",
}

// CreateAudienceRequest is the body of POST /act_{id}/customaudiences.
type CreateAudienceRequest struct {
	Name               string `json:"name"`
	Subtype            string `json:"subtype"`
	Description        string `json:"description,omitempty"`
	CustomerFileSource string `json:"customer_file_source"`
}

// CreateAudienceResponse is the success body of the create call.
type CreateAudienceResponse struct {
	ID string `json:"id"`
}

// UploadSession is the per-batch session metadata the platform uses to
// assemble multi-batch uploads.
type UploadSession struct {
	SessionID         int64 `json:"session_id"`
	BatchSeq          int   `json:"batch_seq"`
	LastBatchFlag     bool  `json:"last_batch_flag"`
	EstimatedNumTotal int   `json:"estimated_num_total"`
}

// UsersPayload carries one batch of hashed rows plus their schema.
type UsersPayload struct {
	Schema  []string      `json:"schema"`
	Data    [][]string    `json:"data"`
	Session UploadSession `json:"session"`
}

// AddUsersRequest is the body of POST /{audience_id}/users.
type AddUsersRequest struct {
	Payload UsersPayload `json:"payload"`
}

// AddUsersResponse is the success body of the users call. NumReceived is
// zero when the platform omits it.
type AddUsersResponse struct {
	AudienceID          string                 `json:"audience_id"`
	NumReceived         int                    `json:"num_received"`
	NumInvalidEntries   int                    `json:"num_invalid_entries"`
	InvalidEntrySamples map[string]interface{} `json:"invalid_entry_samples,omitempty"`
}

// InsightsQuery selects an insights report.
type InsightsQuery struct {
	Since  string
	Until  string
	Level  string
	Fields []string
}

// TimeRange is serialized into the time_range query parameter.
type TimeRange struct {
	Since string `json:"since"`
	Until string `json:"until"`
}

// errorEnvelope is the Graph API error wrapper: {"error": {...}}.
type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// APIError is an error object returned by the Graph API.
type APIError struct {
	StatusCode   int    `json:"-"`
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode"`
	FBTraceID    string `json:"fbtrace_id"`
}

// Error returns the platform's message so callers can surface it verbatim.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf(graphErrorFallbackTemplate, e.StatusCode)
}

// Temporary reports whether the error came from a platform-side failure
// (5xx or throttling) rather than a rejected request.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}
