package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/ignite/meta-audience-relay/internal/pkg/httputil"
	"github.com/ignite/meta-audience-relay/internal/pkg/logger"
	"github.com/ignite/meta-audience-relay/internal/service/audience"
)

// Client-facing messages for the custom audience endpoint.
const (
	msgMissingFields     = "Missing required fields"
	msgNoValidCustomers  = "No valid customer data to upload"
	msgInvalidJSON       = "Invalid JSON body"
	msgUpdateUnsupported = "Updating an existing audience is not supported"
	msgBodyTooLarge      = "Request body too large"
	msgAudienceCreated   = "Audience created. It may take up to 24 hours for matches to appear."
)

// CreateAudienceResponse is the success body of POST /api/meta/custom-audience.
type CreateAudienceResponse struct {
	Success    bool   `json:"success"`
	AudienceID string `json:"audienceId"`
	Uploaded   int    `json:"uploaded"`
	Message    string `json:"message"`
}

// CreateCustomAudience creates an audience and uploads the posted customers.
//
//	POST /api/meta/custom-audience
func (h *Handlers) CreateCustomAudience(w http.ResponseWriter, r *http.Request) {
	raw, err := httputil.ReadBody(w, r)
	if err != nil {
		if errors.Is(err, httputil.ErrBodyTooLarge) {
			httputil.Error(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		httputil.BadRequest(w, msgInvalidJSON)
		return
	}

	req, err := decodeCreateRequest(raw)
	if err != nil {
		logger.Warn("custom audience request rejected", "error", err)
		httputil.BadRequest(w, msgInvalidJSON)
		return
	}

	result, err := h.audiences.CreateAndPopulate(r.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, audience.ErrMissingFields):
		httputil.BadRequest(w, msgMissingFields)
		return
	case errors.Is(err, audience.ErrUpdateUnsupported):
		httputil.BadRequest(w, msgUpdateUnsupported)
		return
	case errors.Is(err, audience.ErrNoValidCustomers):
		httputil.BadRequest(w, msgNoValidCustomers)
		return
	case errors.Is(err, audience.ErrCreateFailed):
		msg := platformErrorMessage(err)
		logger.Error("custom audience request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		httputil.InternalError(w, msg)
		return
	default:
		respondSafeError(w, r, http.StatusInternalServerError, err, safeErrorMessage(http.StatusInternalServerError, err))
		return
	}

	httputil.OK(w, CreateAudienceResponse{
		Success:    result.Success,
		AudienceID: result.AudienceID,
		Uploaded:   result.Uploaded,
		Message:    msgAudienceCreated,
	})
}

// decodeCreateRequest turns a loosely typed JSON body into a CreateRequest.
// Numbers become their shortest decimal form (1.50 -> 1.5, 1e3 -> 1000) and
// true becomes "true"; null, false, 0 and "" count as absent. A customers value that is not an array leaves Customers nil so the
// request fails the required-fields check, as does an empty body.
// Non-object entries carry no identifiers.
func decodeCreateRequest(raw []byte) (audience.CreateRequest, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return audience.CreateRequest{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return audience.CreateRequest{}, err
	}

	req := audience.CreateRequest{
		Name:       scalarString(body["name"]),
		AudienceID: scalarString(body["audienceId"]),
	}

	list, ok := body["customers"].([]any)
	if !ok {
		return req, nil
	}
	req.Customers = make([]audience.CustomerRecord, 0, len(list))
	for _, item := range list {
		obj, _ := item.(map[string]any)
		req.Customers = append(req.Customers, audience.CustomerRecord{
			Email:     scalarString(obj["email"]),
			Phone:     scalarString(obj["phone"]),
			FirstName: scalarString(obj["fn"]),
			LastName:  scalarString(obj["ln"]),
		})
	}
	return req, nil
}

// scalarString renders a decoded JSON scalar as text, or "" when the value
// is falsy or not a scalar.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		if f == 0 {
			return ""
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return ""
	default:
		return ""
	}
}
