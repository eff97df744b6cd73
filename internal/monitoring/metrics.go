package monitoring

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cocan/internal/kitchen"
)

// Metrics exports the kitchen's counters, histograms and gauges to
// prometheus on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	guestsSpawned  prometheus.Counter
	ordersAccepted prometheus.Counter
	dishesServed   *prometheus.CounterVec
	dishesDropped  prometheus.Counter
	commandsAbort  prometheus.Counter

	dishScore *prometheus.HistogramVec
	cookTime  *prometheus.HistogramVec
	waitTime  prometheus.Histogram

	lineLength  *prometheus.GaugeVec
	present     prometheus.Gauge
	busyChobins prometheus.Gauge
}

// NewMetrics creates and registers every collector under namespace.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		guestsSpawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guests_spawned_total",
			Help:      "Guests that entered the restaurant",
		}),
		ordersAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_accepted_total",
			Help:      "Orders taken at the counter",
		}),
		dishesServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dishes_served_total",
			Help:      "Dishes handed to a guest, by reaction",
		}, []string{"reaction"}),
		dishesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dishes_discarded_total",
			Help:      "Dishes that reached the counter with nobody waiting",
		}),
		commandsAbort: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_aborted_total",
			Help:      "Commands aborted before serving",
		}),
		dishScore: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dish_score",
			Help:      "Score of each served dish",
			Buckets:   []float64{0, 5, 10, 20, 25, 30, 35},
		}, []string{"chobin"}),
		cookTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cook_time_seconds",
			Help:      "Time from order accepted to dish served",
			Buckets:   prometheus.LinearBuckets(0, 15, 6),
		}, []string{"chobin"}),
		waitTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "guest_wait_seconds",
			Help:      "Time a guest spent waiting in the order line",
			Buckets:   prometheus.LinearBuckets(0, 10, 8),
		}),
		lineLength: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "line_length",
			Help:      "Guests in each line",
		}, []string{"line"}),
		present: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "guests_present",
			Help:      "Guests currently in the restaurant",
		}),
		busyChobins: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chobins_busy",
			Help:      "Chobins carrying out a command",
		}),
	}

	m.registry.MustRegister(
		m.guestsSpawned,
		m.ordersAccepted,
		m.dishesServed,
		m.dishesDropped,
		m.commandsAbort,
		m.dishScore,
		m.cookTime,
		m.waitTime,
		m.lineLength,
		m.present,
		m.busyChobins,
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) GuestSpawned()   { m.guestsSpawned.Inc() }
func (m *Metrics) OrderAccepted()  { m.ordersAccepted.Inc() }
func (m *Metrics) DishDiscarded()  { m.dishesDropped.Inc() }
func (m *Metrics) CommandAborted() { m.commandsAbort.Inc() }

func (m *Metrics) DishServed(s kitchen.Served) {
	chobin := strconv.Itoa(s.Chobin)
	m.dishesServed.WithLabelValues(s.Reaction.String()).Inc()
	m.dishScore.WithLabelValues(chobin).Observe(float64(s.Score))
	m.cookTime.WithLabelValues(chobin).Observe(s.CookTime.Seconds())
	m.waitTime.Observe(s.WaitTime.Seconds())
}

func (m *Metrics) Gauges(g kitchen.Gauges) {
	m.lineLength.WithLabelValues("order").Set(float64(g.OrderLine))
	m.lineLength.WithLabelValues("serve").Set(float64(g.ServeLine))
	m.present.Set(float64(g.Present))
	m.busyChobins.Set(float64(g.BusyChobin))
}

var _ kitchen.Recorder = (*Metrics)(nil)
