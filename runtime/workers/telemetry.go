package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"chat-relay/metrics"

	"github.com/shirou/gopsutil/process"
)

// TelemetryWorker samples the relay's own CPU and resident memory on a
// fixed interval and publishes them as prometheus gauges.
type TelemetryWorker struct {
	log      *slog.Logger
	interval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, interval: interval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			cpu, err := p.CPUPercent()
			if err != nil {
				w.log.Debug("Failed to sample cpu usage", "error", err)
				continue
			}
			memInfo, err := p.MemoryInfo()
			if err != nil {
				w.log.Debug("Failed to sample memory usage", "error", err)
				continue
			}
			metrics.ProcessCPUPercent.Set(cpu)
			metrics.ProcessResidentBytes.Set(float64(memInfo.RSS))
		}
	}
}
