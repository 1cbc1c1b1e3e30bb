// Package observability aggregates relay telemetry for the stats surface.
package observability

import (
	"sync"
	"sync/atomic"
)

// Stats is the point-in-time view served to operators.
type Stats struct {
	ConnectedClients  int     `json:"connected_clients"`
	EventsBroadcast   uint64  `json:"events_broadcast"`
	MessagesPersisted uint64  `json:"messages_persisted"`
	AppendFailures    uint64  `json:"append_failures"`
	DroppedDeliveries uint64  `json:"dropped_deliveries"`
	AllocMemMb        uint64  `json:"alloc_mem_mb"`
	NumGC             uint32  `json:"num_gc"`
	RssMb             uint64  `json:"rss_mb"`
	CPUPercent        float64 `json:"cpu_percent"`
}

// Manager collects counters from the hub and relay worker plus system
// samples from the heartbeat worker. Counters are atomic so the hot path
// never takes the mutex; the mutex only guards the sampled system stats.
type Manager struct {
	mu               sync.RWMutex
	connectedClients atomic.Int64
	broadcasts       atomic.Uint64
	persisted        atomic.Uint64
	appendFailures   atomic.Uint64
	dropped          atomic.Uint64
	allocMemMb       uint64
	numGC            uint32
	rssMb            uint64
	cpuPercent       float64
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) SetConnectedClients(n int) { m.connectedClients.Store(int64(n)) }
func (m *Manager) AddBroadcast()             { m.broadcasts.Add(1) }
func (m *Manager) AddPersisted()             { m.persisted.Add(1) }
func (m *Manager) AddAppendFailure()         { m.appendFailures.Add(1) }
func (m *Manager) AddDroppedDelivery()       { m.dropped.Add(1) }

// SetSystemStats is called by the heartbeat worker with fresh samples.
func (m *Manager) SetSystemStats(allocMemMb uint64, numGC uint32, rssMb uint64, cpuPercent float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allocMemMb = allocMemMb
	m.numGC = numGC
	m.rssMb = rssMb
	m.cpuPercent = cpuPercent
}

func (m *Manager) GetLatest() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		ConnectedClients:  int(m.connectedClients.Load()),
		EventsBroadcast:   m.broadcasts.Load(),
		MessagesPersisted: m.persisted.Load(),
		AppendFailures:    m.appendFailures.Load(),
		DroppedDeliveries: m.dropped.Load(),
		AllocMemMb:        m.allocMemMb,
		NumGC:             m.numGC,
		RssMb:             m.rssMb,
		CPUPercent:        m.cpuPercent,
	}
}
