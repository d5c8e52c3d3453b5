// File: affinity/topology.go
// Author: momentics <momentics@gmail.com>
//
// Logical core discovery.

package affinity

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
)

// CoreCount returns the number of logical CPUs of the host. gopsutil reads
// the host topology; runtime.NumCPU is used when that is unavailable.
func CoreCount() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		return runtime.NumCPU()
	}
	return n
}
