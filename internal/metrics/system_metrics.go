// internal/metrics/system_metrics.go
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// SystemMetrics collects and exposes process and host metrics
type SystemMetrics struct {
	// Go runtime metrics
	goRoutines  prometheus.Gauge
	goMemAlloc  prometheus.Gauge
	goMemSys    prometheus.Gauge
	goGCCount   prometheus.Counter
	lastGCCount uint32

	// host metrics
	cpuUsage prometheus.Gauge
	memUsage prometheus.Gauge
}

// NewSystemMetrics creates a new SystemMetrics instance registered on reg
func NewSystemMetrics(reg prometheus.Registerer) *SystemMetrics {
	factory := promauto.With(reg)

	m := &SystemMetrics{
		goRoutines: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ticker_go_goroutines",
				Help: "Number of goroutines",
			},
		),
		goMemAlloc: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ticker_go_memory_allocated_bytes",
				Help: "Bytes allocated by Go runtime",
			},
		),
		goMemSys: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ticker_go_memory_system_bytes",
				Help: "Bytes obtained from system by Go runtime",
			},
		),
		goGCCount: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ticker_go_gc_count_total",
				Help: "Number of garbage collections",
			},
		),

		cpuUsage: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ticker_system_cpu_usage_percent",
				Help: "CPU usage percentage",
			},
		),
		memUsage: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ticker_system_memory_usage_percent",
				Help: "Memory usage percentage",
			},
		),
	}

	return m
}

// StartCollecting collects metrics every interval until ctx is done
func (m *SystemMetrics) StartCollecting(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Collect()
			}
		}
	}()
}

// Collect takes a single sample of runtime and host metrics
func (m *SystemMetrics) Collect() {
	m.collectGoMetrics()
	m.collectSystemMetrics()
}

func (m *SystemMetrics) collectGoMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.goRoutines.Set(float64(runtime.NumGoroutine()))
	m.goMemAlloc.Set(float64(memStats.Alloc))
	m.goMemSys.Set(float64(memStats.Sys))

	currentGCCount := memStats.NumGC
	if m.lastGCCount == 0 {
		m.lastGCCount = currentGCCount // initial value
	}
	m.goGCCount.Add(float64(currentGCCount - m.lastGCCount))
	m.lastGCCount = currentGCCount
}

func (m *SystemMetrics) collectSystemMetrics() {
	// zero interval compares against the previous call instead of blocking
	cpuPercent, err := cpu.Percent(0, false)
	if err == nil && len(cpuPercent) > 0 {
		m.cpuUsage.Set(cpuPercent[0])
	}

	memInfo, err := mem.VirtualMemory()
	if err == nil {
		m.memUsage.Set(memInfo.UsedPercent)
	}
}
