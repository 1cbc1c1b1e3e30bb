package workers

import (
	"chat-relay/contract"
	"chat-relay/observability"
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*HeartbeatWorker)(nil)

// HeartbeatWorker periodically samples the relay's own process (RSS, CPU)
// and Go runtime stats into the monitoring manager. Sampling is cheap and
// off the hot path; it's okay if a tick is late.
type HeartbeatWorker struct {
	log      *slog.Logger
	monitor  *observability.Manager
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, monitor *observability.Manager,
	interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, monitor: monitor, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rssMb, cpuPercent, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			var memStats runtime.MemStats
			runtime.ReadMemStats(&memStats)

			w.monitor.SetSystemStats(
				memStats.Alloc/1024/1024,
				memStats.NumGC,
				rssMb,
				cpuPercent,
			)
		}
	}
}

func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS / 1024 / 1024, cpuPercent, nil
}
