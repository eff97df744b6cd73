package monitoring

import (
	"sync"
	"time"

	"cocan/internal/stage"
)

// Monitor keeps a flat map of the latest game figures for the API's
// metrics endpoint. It listens to kitchen events as a stage.Sink.
type Monitor struct {
	metrics      map[string]interface{}
	metricsMutex sync.RWMutex
	startTime    time.Time

	scenario string
	session  string
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		metrics:   make(map[string]interface{}),
		startTime: time.Now(),
	}
}

// SetSession names the game whose summary Publish will record.
func (m *Monitor) SetSession(scenario, session string) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.scenario = scenario
	m.session = session
	m.metrics["scenario"] = scenario
	m.metrics["session"] = session
}

// RecordMetric records a metric value
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] = value
}

// GetMetric returns a specific metric value
func (m *Monitor) GetMetric(name string) (interface{}, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	value, exists := m.metrics[name]
	return value, exists
}

// GetMetrics returns a copy of all current metrics plus uptime.
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	metrics := make(map[string]interface{}, len(m.metrics)+1)
	for k, v := range m.metrics {
		metrics[k] = v
	}
	metrics["uptime_seconds"] = time.Since(m.startTime).Seconds()
	return metrics
}

// Reset clears all metrics
func (m *Monitor) Reset() {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics = make(map[string]interface{})
}

// RecordSessionResult stores a finished game's figures under
// "<scenario>_<session>_".
func (m *Monitor) RecordSessionResult(scenario, session string, metrics map[string]interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.recordSessionResult(scenario, session, metrics)
}

func (m *Monitor) recordSessionResult(scenario, session string, metrics map[string]interface{}) {
	prefix := scenario + "_" + session + "_"
	for k, v := range metrics {
		m.metrics[prefix+k] = v
	}
	m.metrics[prefix+"finished_at"] = time.Now().Format(time.RFC3339)
}

// Publish counts events per kind and keeps the latest scoreboard. A summary
// event is recorded as the session result.
func (m *Monitor) Publish(e stage.Event) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	key := "events_" + string(e.Kind)
	n, _ := m.metrics[key].(int)
	m.metrics[key] = n + 1
	m.metrics["last_event"] = string(e.Kind)
	m.metrics["sim_seconds"] = e.At.Seconds()

	switch e.Kind {
	case stage.EventScoreboard:
		for k, v := range e.Data {
			m.metrics["scoreboard_"+k] = v
		}
	case stage.EventSummary:
		m.recordSessionResult(m.scenario, m.session, e.Data)
	}
}

var _ stage.Sink = (*Monitor)(nil)
