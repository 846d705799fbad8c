package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_events_total",
		Help: "Total number of inbound gateway events",
	}, []string{"kind"})

	EventHandleLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bot_event_handle_latency_seconds",
		Help:    "Latency of dialogue event handling",
		Buckets: prometheus.DefBuckets,
	})

	DialogueRepromptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_dialogue_reprompts_total",
		Help: "Total number of re-prompts caused by invalid input",
	}, []string{"state"})

	CartAddsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_cart_adds_total",
		Help: "Total number of cart entries added",
	})

	OrdersSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_orders_submitted_total",
		Help: "Total number of orders sent to the administrator",
	})

	OrdersConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_orders_confirmed_total",
		Help: "Total number of orders confirmed by the administrator",
	})

	ProductsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_products_added_total",
		Help: "Total number of products added to the catalog",
	})

	CategoriesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_categories_created_total",
		Help: "Total number of categories created",
	})

	CatalogSaveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bot_catalog_save_latency_seconds",
		Help:    "Latency of catalog snapshot writes",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
