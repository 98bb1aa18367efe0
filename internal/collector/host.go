package collector

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"healthmon/internal/models"
)

// Host reads utilisation of the local machine.
type Host struct {
	DiskPath string
	clock    clockwork.Clock
}

func NewHost(diskPath string, clock clockwork.Clock) *Host {
	if diskPath == "" {
		diskPath = "/"
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Host{DiskPath: diskPath, clock: clock}
}

func (h *Host) Sample(ctx context.Context) (models.MetricsSample, error) {
	// interval 0 compares against the previous call, so Sample never blocks.
	pcts, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return models.MetricsSample{}, collectionErr("host cpu", err)
	}
	if len(pcts) == 0 {
		return models.MetricsSample{}, collectionErr("host cpu", errNoCPUData)
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return models.MetricsSample{}, collectionErr("host memory", err)
	}
	du, err := disk.UsageWithContext(ctx, h.DiskPath)
	if err != nil {
		return models.MetricsSample{}, collectionErr("host disk", err)
	}
	return models.MetricsSample{
		TS:      h.clock.Now().UTC().Truncate(time.Millisecond),
		CPUPct:  models.ClampPct(pcts[0]),
		MemPct:  models.ClampPct(vm.UsedPercent),
		DiskPct: models.ClampPct(du.UsedPercent),
	}, nil
}
