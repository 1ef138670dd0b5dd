package metrics_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	c := metrics.New()

	c.ObserveOutcome(domain.Pass(domain.RuleFileName, "File name is valid."))
	c.ObserveOutcome(domain.Fail(domain.RuleHeaders, "Headers are not matching."))
	c.ObserveReport(domain.Report{FileType: domain.FileTypeCSV, Accepted: false}, 10*time.Millisecond)
	c.ObserveReport(domain.Report{FileType: domain.FileTypeCSV, Accepted: true}, 10*time.Millisecond)
	c.ObserveError(domain.FileTypeText, time.Millisecond)

	n, err := testutil.GatherAndCount(c.Registry(), "intake_uploads_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "one series per file_type/verdict pair")

	n, err = testutil.GatherAndCount(c.Registry(), "intake_rule_outcomes_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCollector_Handler(t *testing.T) {
	c := metrics.New()
	c.ObserveReport(domain.Report{FileType: domain.FileTypeText, Accepted: true}, time.Millisecond)

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `intake_uploads_total{file_type="txt",verdict="accepted"} 1`), body)
	assert.Contains(t, body, "intake_processing_seconds_bucket")
}

func TestCollector_UnknownFileTypesShareOneSeries(t *testing.T) {
	c := metrics.New()
	for _, ft := range []string{"junk0", "junk1", "junk2"} {
		c.ObserveReport(domain.Report{FileType: domain.FileType(ft)}, time.Millisecond)
		c.ObserveError(domain.FileType(ft), time.Millisecond)
	}

	n, err := testutil.GatherAndCount(c.Registry(), "intake_uploads_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "rejected and error, both under file_type=other")

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `intake_uploads_total{file_type="other",verdict="rejected"} 3`)
	assert.NotContains(t, body, "junk")
}
