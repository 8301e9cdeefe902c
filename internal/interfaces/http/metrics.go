package http

import (
	"strconv"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contadores Prometheus de la API.
type Metrics struct {
	requests  *prometheus.CounterVec
	movements *prometheus.CounterVec
}

// NewMetrics registra los contadores en el registry por defecto.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inventario_http_requests_total",
			Help: "Total de requests HTTP por método, ruta y código de estado.",
		}, []string{"method", "path", "status"}),
		movements: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inventario_movimientos_total",
			Help: "Total de movimientos de inventario registrados por tipo.",
		}, []string{"tipo"}),
	}
}

// MovementRegistered incrementa el contador de movimientos.
func (m *Metrics) MovementRegistered(movementType string) {
	m.movements.WithLabelValues(movementType).Inc()
}

// Middleware cuenta cada request HTTP al terminar de atenderla.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		m.requests.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).Inc()
		return err
	}
}

// MetricsHandler expone el endpoint Prometheus.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
