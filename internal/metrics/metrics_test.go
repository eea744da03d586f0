package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAudienceBatchesCounts(t *testing.T) {
	before := testutil.ToFloat64(AudienceBatches.WithLabelValues("failure"))
	AudienceBatches.WithLabelValues("failure").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(AudienceBatches.WithLabelValues("failure")))
}

func TestCollectorsRegistered(t *testing.T) {
	GraphRequestDuration.WithLabelValues("add_users", "success").Observe(0.2)
	assert.Equal(t, 1, testutil.CollectAndCount(GraphRequestDuration, "meta_graph_request_duration_seconds"))
}
