package report

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostInfo describes the machine the console runs on.
type HostInfo struct {
	Hostname        string
	OS              string
	Platform        string
	PlatformVersion string
	KernelArch      string
	CPUModel        string
	Cores           int
	MemTotal        uint64
	MemAvailable    uint64
}

// Probe gathers host information.
type Probe func(ctx context.Context) (HostInfo, error)

// SystemProbe reads host information through gopsutil.  CPU and memory
// failures leave their fields empty; only a host.Info failure is
// returned.
func SystemProbe(ctx context.Context) (HostInfo, error) {
	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		return HostInfo{}, fmt.Errorf("host info: %w", err)
	}
	info := HostInfo{
		Hostname:        hi.Hostname,
		OS:              hi.OS,
		Platform:        hi.Platform,
		PlatformVersion: hi.PlatformVersion,
		KernelArch:      hi.KernelArch,
	}
	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		info.Cores = n
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.MemTotal = vm.Total
		info.MemAvailable = vm.Available
	}
	return info, nil
}

// Identity names the running console instance.
type Identity struct {
	Version string
	BootID  string
	Radio   string
}

// Info renders host and runtime information.  A probe failure is
// reported inline and the runtime section is still printed.
func Info(ctx context.Context, w io.Writer, probe Probe, id Identity) {
	fmt.Fprintln(w, "=== System Info ===")
	if probe == nil {
		probe = SystemProbe
	}
	hi, err := probe(ctx)
	if err != nil {
		fmt.Fprintf(w, "Host:      unavailable (%v)\n", err)
	} else {
		fmt.Fprintf(w, "Host:      %s\n", orDash(hi.Hostname))
		fmt.Fprintf(w, "OS:        %s %s %s (%s)\n", hi.OS, hi.Platform, hi.PlatformVersion, hi.KernelArch)
		fmt.Fprintf(w, "CPU:       %s, %d core(s)\n", orDash(hi.CPUModel), hi.Cores)
		if hi.MemTotal > 0 {
			fmt.Fprintf(w, "Memory:    %s total, %s available\n",
				humanize.IBytes(hi.MemTotal), humanize.IBytes(hi.MemAvailable))
		}
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	fmt.Fprintf(w, "Runtime:   %s, heap %s, %d goroutine(s)\n",
		runtime.Version(), humanize.IBytes(ms.HeapAlloc), runtime.NumGoroutine())
	fmt.Fprintf(w, "Radio:     %s\n", id.Radio)
	fmt.Fprintf(w, "Version:   %s\n", id.Version)
	fmt.Fprintf(w, "Boot ID:   %s\n", id.BootID)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Banner is printed once when the console starts.
func Banner(w io.Writer, id Identity) {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, " radiocon %s\n", id.Version)
	fmt.Fprintf(w, " radio: %s  boot: %s\n", id.Radio, id.BootID)
	fmt.Fprintln(w, " Type 'help' for available commands.")
	fmt.Fprintln(w, "========================================")
}
