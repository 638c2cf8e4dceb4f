package source

import "context"

// Provider reads raw statistics from the operating system. Every method may
// fail independently; sources keep their previous snapshot when one does.
type Provider interface {
	// CPUPercent returns utilization since the previous call, aggregate and
	// per core.
	CPUPercent(ctx context.Context) (total float64, perCore []float64, err error)
	CPUInfo(ctx context.Context) (CPUInfo, error)
	LoadAvg(ctx context.Context) ([3]float64, error)
	Uptime(ctx context.Context) (uint64, error)
	Memory(ctx context.Context) (MemStat, error)
	NetCounters(ctx context.Context) ([]NetCounter, error)
	// Processes enumerates every process in one pass. It checks ctx as it
	// goes and returns ctx.Err() when cancelled.
	Processes(ctx context.Context) ([]ProcInfo, error)
}

// CPUInfo is static processor information.
type CPUInfo struct {
	Model   string
	Logical int
}

// MemStat holds memory and swap byte counts.
type MemStat struct {
	Total     uint64
	Used      uint64
	Available uint64
	Cached    uint64
	Free      uint64

	SwapTotal uint64
	SwapUsed  uint64
	SwapFree  uint64
}

// NetCounter is the cumulative byte count of one interface.
type NetCounter struct {
	Name      string
	BytesRecv uint64
	BytesSent uint64
}

// ProcInfo is one process as reported by the OS. CPUTime is cumulative user
// plus system seconds; utilization is derived from successive samples.
type ProcInfo struct {
	Pid        int32
	Ppid       int32
	Name       string
	Cmdline    string
	User       string
	Threads    int32
	CPUTime    float64
	RSS        uint64
	MemPercent float32
	Status     string
	CreateTime int64
}
