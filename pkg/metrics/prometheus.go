package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics контейнер метрик сервиса сопоставления
type Metrics struct {
	// gRPC
	GRPCRequestsTotal    *prometheus.CounterVec
	GRPCRequestDuration  *prometheus.HistogramVec
	GRPCRequestsInFlight prometheus.Gauge

	// Решения движка
	RequestsProcessed *prometheus.CounterVec
	MatchDistance     prometheus.Histogram
	CandidatesFound   prometheus.Histogram
	InventoryUnits    *prometheus.GaugeVec

	// Побочные эффекты после коммита
	EventsPublished    *prometheus.CounterVec
	EventsDropped      *prometheus.CounterVec
	EventHandlerErrors *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
	RepositoryDuration *prometheus.HistogramVec
	RankCacheLookups   *prometheus.CounterVec

	ServiceInfo *prometheus.GaugeVec
}

var (
	defaultMetrics *Metrics
	defaultMu      sync.Mutex
)

// InitMetrics регистрирует метрики в глобальном реестре prometheus
func InitMetrics(namespace, subsystem string) *Metrics {
	m := NewMetrics(prometheus.DefaultRegisterer, namespace, subsystem)

	defaultMu.Lock()
	defaultMetrics = m
	defaultMu.Unlock()
	return m
}

// NewMetrics регистрирует метрики в reg. Тесты передают собственный реестр.
func NewMetrics(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		GRPCRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "grpc_requests_total",
				Help:      "Total number of gRPC requests",
			},
			[]string{"method", "status"},
		),
		GRPCRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "grpc_request_duration_seconds",
				Help:      "Duration of gRPC requests",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method"},
		),
		GRPCRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "grpc_requests_in_flight",
				Help:      "Current number of gRPC requests being processed",
			},
		),

		RequestsProcessed: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_processed_total",
				Help:      "Fulfillment attempts by outcome and blood type",
			},
			[]string{"outcome", "blood_type"},
		),
		MatchDistance: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "match_distance_km",
				Help:      "Road distance between request and matched donor",
				Buckets:   []float64{2, 4, 6, 8, 10, 15, 20, 30, 50},
			},
		),
		CandidatesFound: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rank_candidates",
				Help:      "Number of donors returned by a ranking",
				Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
			},
		),
		InventoryUnits: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "inventory_units",
				Help:      "Bank stock per blood type",
			},
			[]string{"blood_type", "kind"},
		),

		EventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_published_total",
				Help:      "Events queued for collaborators",
			},
			[]string{"type"},
		),
		EventsDropped: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_dropped_total",
				Help:      "Events dropped because the queue was full or closed",
			},
			[]string{"type"},
		),
		EventHandlerErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "event_handler_errors_total",
				Help:      "Failed event deliveries by handler",
			},
			[]string{"handler"},
		),
		NotificationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "notifications_total",
				Help:      "Donor alerts by channel and result",
			},
			[]string{"channel", "status"},
		),
		RepositoryDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "repository_duration_seconds",
				Help:      "Persistence call latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "status"},
		),
		RankCacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rank_cache_lookups_total",
				Help:      "Ranking preview cache lookups",
			},
			[]string{"result"},
		),

		ServiceInfo: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}
}

// Get возвращает глобальные метрики, при необходимости регистрируя их
// в отдельном реестре, чтобы не конфликтовать с InitMetrics.
func Get() *Metrics {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultMetrics == nil {
		defaultMetrics = NewMetrics(prometheus.NewRegistry(), "bloodlink", "")
	}
	return defaultMetrics
}

// RecordGRPCRequest записывает метрики gRPC запроса
func (m *Metrics) RecordGRPCRequest(method, status string, duration time.Duration) {
	m.GRPCRequestsTotal.WithLabelValues(method, status).Inc()
	m.GRPCRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordProcessed учитывает одну попытку обработки запроса
func (m *Metrics) RecordProcessed(outcome, bloodType string, distance int) {
	m.RequestsProcessed.WithLabelValues(outcome, bloodType).Inc()
	if outcome == "matched" {
		m.MatchDistance.Observe(float64(distance))
	}
}

// RecordCandidates учитывает размер выдачи ранжирования
func (m *Metrics) RecordCandidates(n int) {
	m.CandidatesFound.Observe(float64(n))
}

// SetInventory обновляет остатки по группе
func (m *Metrics) SetInventory(bloodType string, total, reserved int) {
	m.InventoryUnits.WithLabelValues(bloodType, "total").Set(float64(total))
	m.InventoryUnits.WithLabelValues(bloodType, "reserved").Set(float64(reserved))
	m.InventoryUnits.WithLabelValues(bloodType, "available").Set(float64(total - reserved))
}

func (m *Metrics) RecordNotification(channel string, err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.NotificationsTotal.WithLabelValues(channel, status).Inc()
}

func (m *Metrics) RecordRepository(operation string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RepositoryDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.RankCacheLookups.WithLabelValues(result).Inc()
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler возвращает HTTP handler для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer поднимает отдельный HTTP сервер для /metrics и /health
func StartMetricsServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // ответ уже отправлен
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}

// RequestTracker считает активные запросы по методам
type RequestTracker struct {
	mu       sync.Mutex
	active   map[string]int
	inFlight prometheus.Gauge
}

func NewRequestTracker(inFlight prometheus.Gauge) *RequestTracker {
	return &RequestTracker{
		active:   make(map[string]int),
		inFlight: inFlight,
	}
}

func (t *RequestTracker) Start(method string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active[method]++
	t.inFlight.Inc()
}

// End игнорирует End без парного Start
func (t *RequestTracker) End(method string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active[method] > 0 {
		t.active[method]--
		t.inFlight.Dec()
	}
}
