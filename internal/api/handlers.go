package api

import (
	"context"

	"github.com/ignite/meta-audience-relay/internal/service/audience"
)

// AudienceCreator creates and populates custom audiences.
type AudienceCreator interface {
	CreateAndPopulate(ctx context.Context, req audience.CreateRequest) (*audience.UploadResult, error)
}

// InsightsProvider returns raw campaign insights for a date range.
type InsightsProvider interface {
	CampaignInsights(ctx context.Context, since, until string) ([]byte, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	audiences AudienceCreator
	insights  InsightsProvider
}

// NewHandlers creates a new handlers instance
func NewHandlers(audiences AudienceCreator, insights InsightsProvider) *Handlers {
	return &Handlers{
		audiences: audiences,
		insights:  insights,
	}
}
