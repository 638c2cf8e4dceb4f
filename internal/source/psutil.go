package source

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// procCheckEvery is how many processes are read between cancellation checks.
const procCheckEvery = 64

// PSUtil is the gopsutil-backed Provider.
type PSUtil struct{}

// NewPSUtil returns the system Provider.
func NewPSUtil() *PSUtil {
	return &PSUtil{}
}

func (PSUtil) CPUPercent(ctx context.Context) (float64, []float64, error) {
	total, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, nil, fmt.Errorf("cpu percent: %w", err)
	}
	perCore, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return 0, nil, fmt.Errorf("per-core cpu percent: %w", err)
	}
	if len(total) == 0 {
		return 0, perCore, nil
	}
	return total[0], perCore, nil
}

func (PSUtil) CPUInfo(ctx context.Context) (CPUInfo, error) {
	var info CPUInfo
	n, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return info, fmt.Errorf("cpu count: %w", err)
	}
	info.Logical = n

	stats, err := cpu.InfoWithContext(ctx)
	if err == nil && len(stats) > 0 {
		info.Model = stats[0].ModelName
	}
	return info, nil
}

func (PSUtil) LoadAvg(ctx context.Context) ([3]float64, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return [3]float64{}, fmt.Errorf("load average: %w", err)
	}
	return [3]float64{avg.Load1, avg.Load5, avg.Load15}, nil
}

func (PSUtil) Uptime(ctx context.Context) (uint64, error) {
	up, err := host.UptimeWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("uptime: %w", err)
	}
	return up, nil
}

func (PSUtil) Memory(ctx context.Context) (MemStat, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemStat{}, fmt.Errorf("virtual memory: %w", err)
	}
	st := MemStat{
		Total:     vm.Total,
		Used:      vm.Used,
		Available: vm.Available,
		Cached:    vm.Cached,
		Free:      vm.Free,
	}
	// Swap is optional; systems without it report zeros.
	if sw, err := mem.SwapMemoryWithContext(ctx); err == nil {
		st.SwapTotal = sw.Total
		st.SwapUsed = sw.Used
		st.SwapFree = sw.Free
	}
	return st, nil
}

func (PSUtil) NetCounters(ctx context.Context) ([]NetCounter, error) {
	stats, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("network counters: %w", err)
	}
	out := make([]NetCounter, 0, len(stats))
	for _, s := range stats {
		out = append(out, NetCounter{Name: s.Name, BytesRecv: s.BytesRecv, BytesSent: s.BytesSent})
	}
	return out, nil
}

func (PSUtil) Processes(ctx context.Context) ([]ProcInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	out := make([]ProcInfo, 0, len(procs))
	for i, p := range procs {
		if i%procCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		info, ok := readProcess(ctx, p)
		if ok {
			out = append(out, info)
		}
	}
	return out, nil
}

// readProcess collects one process. ok is false when the process exited
// while being read. Fields the caller may not read, such as another user's
// command line, are left empty.
func readProcess(ctx context.Context, p *process.Process) (ProcInfo, bool) {
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return ProcInfo{}, false
	}
	info := ProcInfo{Pid: p.Pid, Name: name}

	info.Ppid, _ = p.PpidWithContext(ctx)
	info.Cmdline, _ = p.CmdlineWithContext(ctx)
	info.User, _ = p.UsernameWithContext(ctx)
	info.Threads, _ = p.NumThreadsWithContext(ctx)
	info.MemPercent, _ = p.MemoryPercentWithContext(ctx)
	info.CreateTime, _ = p.CreateTimeWithContext(ctx)

	if t, err := p.TimesWithContext(ctx); err == nil {
		info.CPUTime = t.User + t.System
	}
	if m, err := p.MemoryInfoWithContext(ctx); err == nil {
		info.RSS = m.RSS
	}
	if st, err := p.StatusWithContext(ctx); err == nil && len(st) > 0 {
		info.Status = st[0]
	}
	return info, true
}
