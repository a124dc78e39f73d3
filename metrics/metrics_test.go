package metrics

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestObserveAndSnapshot(t *testing.T) {
	m := New()
	m.Observe("GET /a", 200, 10*time.Millisecond)
	m.Observe("GET /a", 500, 30*time.Millisecond)
	m.Observe("POST /b", 404, 5*time.Millisecond)

	snap := m.Snapshot(nil, 0)
	assert.Equal(t, uint64(3), snap.Requests)
	assert.Equal(t, uint64(1), snap.StatusClasses["2xx"])
	assert.Equal(t, uint64(1), snap.StatusClasses["4xx"])
	assert.Equal(t, uint64(1), snap.StatusClasses["5xx"])
	assert.InDelta(t, 15.0, snap.AvgLatencyMs, 0.01)
	assert.Nil(t, snap.Database)

	require.Len(t, snap.TopRoutes, 2)
	assert.Equal(t, "GET /a", snap.TopRoutes[0].Route)
	assert.Equal(t, uint64(1), snap.TopRoutes[0].Errors)
	assert.InDelta(t, 20.0, snap.TopRoutes[0].AvgLatencyMs, 0.01)

	assert.Len(t, m.Snapshot(nil, 1).TopRoutes, 1)
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadGateway, "upstream")
	})

	for _, path := range []string{"/items/1", "/items/2", "/boom"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
	}

	snap := m.Snapshot(nil, 0)
	assert.Equal(t, uint64(3), snap.Requests)
	require.NotEmpty(t, snap.TopRoutes)
	assert.Equal(t, "GET /items/:id", snap.TopRoutes[0].Route)
	assert.Equal(t, uint64(2), snap.TopRoutes[0].Count)
	assert.Equal(t, uint64(1), snap.StatusClasses["5xx"])
}

func TestInstrumentsAreCumulative(t *testing.T) {
	m := New()
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	m.Observe("GET /a", 201, 7*time.Millisecond)
	m.Observe("GET /a", 204, 3*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, m.reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, meterName, rm.ScopeMetrics[0].Scope.Name)

	byName := map[string]metricdata.Metrics{}
	for _, md := range rm.ScopeMetrics[0].Metrics {
		byName[md.Name] = md
	}

	sum, ok := byName[requestsName].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.True(t, sum.IsMonotonic)
	assert.Equal(t, metricdata.CumulativeTemporality, sum.Temporality)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)

	hist, ok := byName[durationName].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.InDelta(t, 10.0, hist.DataPoints[0].Sum, 0.001)

	m.Observe("GET /a", 200, time.Millisecond)
	assert.Equal(t, uint64(3), m.Snapshot(nil, 0).Requests)
}
