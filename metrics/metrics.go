// Package metrics records request counts and latency for the developer console. Instruments
// live on an OpenTelemetry meter provider read in-process through a manual reader.
package metrics

import (
	"context"
	"database/sql"
	"errors"
	"runtime"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

const (
	meterName    = "innerspark/http"
	requestsName = "http.server.requests"
	durationName = "http.server.duration"

	routeKey       = attribute.Key("http.route")
	statusClassKey = attribute.Key("http.status_class")
)

// Collector aggregates request counts and latency per route.
type Collector struct {
	started  time.Time
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// Default is the collector installed by main
var Default = New()

func New() *Collector {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter(meterName)

	requests, err := meter.Int64Counter(requestsName,
		metric.WithDescription("Finished HTTP requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		panic(err)
	}
	duration, err := meter.Float64Histogram(durationName,
		metric.WithDescription("HTTP handler latency"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000))
	if err != nil {
		panic(err)
	}

	return &Collector{
		started:  time.Now(),
		reader:   reader,
		provider: provider,
		requests: requests,
		duration: duration,
	}
}

// Middleware records every request after the handler chain has run.
func (m *Collector) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Method() + " " + c.Route().Path
		m.Observe(route, status, time.Since(start))
		return err
	}
}

// Observe records one finished request.
func (m *Collector) Observe(route string, status int, d time.Duration) {
	ctx := context.Background()
	m.requests.Add(ctx, 1, metric.WithAttributes(
		routeKey.String(route),
		statusClassKey.String(statusClass(status)),
	))
	m.duration.Record(ctx, float64(d.Microseconds())/1000, metric.WithAttributes(routeKey.String(route)))
}

// Shutdown stops the meter provider
func (m *Collector) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

type RouteSnapshot struct {
	Route        string  `json:"route"`
	Count        uint64  `json:"count"`
	Errors       uint64  `json:"errors"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
}

type DBSnapshot struct {
	OpenConnections int   `json:"openConnections"`
	InUse           int   `json:"inUse"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"waitCount"`
	WaitDurationMs  int64 `json:"waitDurationMs"`
}

type Snapshot struct {
	UptimeSeconds int64             `json:"uptimeSeconds"`
	Goroutines    int               `json:"goroutines"`
	Requests      uint64            `json:"requests"`
	StatusClasses map[string]uint64 `json:"statusClasses"`
	AvgLatencyMs  float64           `json:"avgLatencyMs"`
	TopRoutes     []RouteSnapshot   `json:"topRoutes"`
	Database      *DBSnapshot       `json:"database,omitempty"`
}

type routeTotals struct {
	count   uint64
	errors  uint64
	samples uint64
	sumMs   float64
}

// Snapshot gathers the current cumulative values. db may be nil; topN <= 0 returns every route.
func (m *Collector) Snapshot(db *sql.DB, topN int) Snapshot {
	snap := Snapshot{
		UptimeSeconds: int64(time.Since(m.started).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		StatusClasses: map[string]uint64{},
	}

	var rm metricdata.ResourceMetrics
	_ = m.reader.Collect(context.Background(), &rm)

	routes := map[string]*routeTotals{}
	totals := func(route string) *routeTotals {
		rt, ok := routes[route]
		if !ok {
			rt = &routeTotals{}
			routes[route] = rt
		}
		return rt
	}

	var samples uint64
	var sumMs float64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			switch data := md.Data.(type) {
			case metricdata.Sum[int64]:
				if md.Name != requestsName {
					continue
				}
				for _, dp := range data.DataPoints {
					route, _ := dp.Attributes.Value(routeKey)
					class, _ := dp.Attributes.Value(statusClassKey)
					n := uint64(dp.Value)
					snap.Requests += n
					snap.StatusClasses[class.AsString()] += n
					rt := totals(route.AsString())
					rt.count += n
					if class.AsString() == "5xx" {
						rt.errors += n
					}
				}
			case metricdata.Histogram[float64]:
				if md.Name != durationName {
					continue
				}
				for _, dp := range data.DataPoints {
					route, _ := dp.Attributes.Value(routeKey)
					rt := totals(route.AsString())
					rt.samples += dp.Count
					rt.sumMs += dp.Sum
					samples += dp.Count
					sumMs += dp.Sum
				}
			}
		}
	}
	snap.AvgLatencyMs = avg(sumMs, samples)

	list := make([]RouteSnapshot, 0, len(routes))
	for name, rt := range routes {
		list = append(list, RouteSnapshot{
			Route:        name,
			Count:        rt.count,
			Errors:       rt.errors,
			AvgLatencyMs: avg(rt.sumMs, rt.samples),
		})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Route < list[j].Route
	})
	if topN > 0 && len(list) > topN {
		list = list[:topN]
	}
	snap.TopRoutes = list

	if db != nil {
		st := db.Stats()
		snap.Database = &DBSnapshot{
			OpenConnections: st.OpenConnections,
			InUse:           st.InUse,
			Idle:            st.Idle,
			WaitCount:       st.WaitCount,
			WaitDurationMs:  st.WaitDuration.Milliseconds(),
		}
	}
	return snap
}

func avg(sum float64, n uint64) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
