package api

import (
	"net/http"

	"github.com/ignite/meta-audience-relay/internal/pkg/httputil"
)

const msgInsightsFailed = "Failed to fetch data from Meta"

// GetMetaAds relays the campaign insights report for ?since=&until=.
//
//	GET /api/meta-ads
func (h *Handlers) GetMetaAds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	body, err := h.insights.CampaignInsights(r.Context(), q.Get("since"), q.Get("until"))
	if err != nil {
		respondSafeError(w, r, http.StatusInternalServerError, err, msgInsightsFailed)
		return
	}
	httputil.RawJSON(w, http.StatusOK, body)
}
