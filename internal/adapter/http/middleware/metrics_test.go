package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"todoapi/internal/core/telemetry"
)

func TestMetrics_RecordsRequest(t *testing.T) {
	RegisterTestingT(t)

	registry := prometheus.NewRegistry()
	router := newTestRouter(Metrics(telemetry.NewAppMetrics(registry)))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/todos", nil)
	router.ServeHTTP(w, req)

	count, err := testutil.GatherAndCount(registry, "http_requests_total")

	Expect(err).To(BeNil())
	Expect(count).To(Equal(1))
}
