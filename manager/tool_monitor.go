package manager

import (
	"sort"
	"sync"
	"time"

	"aigateway/metrics"
)

// ToolMetrics holds the counters for one external tool.
type ToolMetrics struct {
	Tool        string
	Running     int
	Completed   int
	LastLogTime time.Time
	changed     bool
	mu          sync.Mutex
}

// ToolMonitor tracks how many invocations of each external tool are running
// and logs the numbers when they change, at most once per logInterval.
type ToolMonitor struct {
	metricsMap  map[string]*ToolMetrics
	mu          sync.Mutex
	logInterval time.Duration
	closed      chan struct{}
	wg          sync.WaitGroup
}

// NewToolMonitor creates a monitor with entries for the given tools and
// starts its logging goroutine. Tools not listed get an entry on first use.
func NewToolMonitor(tools []string, logInterval time.Duration) *ToolMonitor {
	if logInterval <= 0 {
		logInterval = time.Second
	}
	tm := &ToolMonitor{
		metricsMap:  make(map[string]*ToolMetrics),
		logInterval: logInterval,
		closed:      make(chan struct{}),
	}
	for _, tool := range tools {
		tm.metricsMap[tool] = &ToolMetrics{Tool: tool}
		metrics.ToolsInFlight.WithLabelValues(tool).Set(0)
	}

	tm.wg.Add(1)
	go tm.monitor()
	return tm
}

// Track marks one invocation of tool as running. The returned func marks it
// finished and must be called exactly once.
func (tm *ToolMonitor) Track(tool string) func() {
	m := tm.get(tool)
	m.incrementRunning()
	metrics.ToolsInFlight.WithLabelValues(tool).Inc()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.finish()
			metrics.ToolsInFlight.WithLabelValues(tool).Dec()
		})
	}
}

// Snapshot returns the running and completed counts for tool.
func (tm *ToolMonitor) Snapshot(tool string) (running, completed int) {
	m := tm.get(tool)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Running, m.Completed
}

func (tm *ToolMonitor) get(tool string) *ToolMetrics {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	m, ok := tm.metricsMap[tool]
	if !ok {
		m = &ToolMetrics{Tool: tool}
		tm.metricsMap[tool] = m
	}
	return m
}

// monitor checks twice per interval and logs tools whose counts moved.
func (tm *ToolMonitor) monitor() {
	defer tm.wg.Done()
	ticker := time.NewTicker(tm.logInterval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-tm.closed:
			return
		case <-ticker.C:
			tm.logChanges()
		}
	}
}

func (tm *ToolMonitor) logChanges() {
	tm.mu.Lock()
	names := make([]string, 0, len(tm.metricsMap))
	for name := range tm.metricsMap {
		names = append(names, name)
	}
	tm.mu.Unlock()
	sort.Strings(names)

	now := time.Now()
	for _, name := range names {
		m := tm.get(name)
		m.mu.Lock()
		if m.changed && now.Sub(m.LastLogTime) >= tm.logInterval {
			log.Infof("Tool: %s | Running: %d | Completed: %d", m.Tool, m.Running, m.Completed)
			m.LastLogTime = now
			m.changed = false
		}
		m.mu.Unlock()
	}
}

// Shutdown stops the logging goroutine.
func (tm *ToolMonitor) Shutdown() {
	select {
	case <-tm.closed:
		return
	default:
	}
	close(tm.closed)
	tm.wg.Wait()
}

func (m *ToolMetrics) incrementRunning() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Running++
	m.changed = true
}

func (m *ToolMetrics) finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Running > 0 {
		m.Running--
	}
	m.Completed++
	m.changed = true
}
