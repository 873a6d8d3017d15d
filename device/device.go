// Package device implements the placement handle shared by every component that allocates numeric buffers
package device

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/klauspost/cpuid/v2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Kind is the kind of a device.
type Kind int

const (
	KindCPU Kind = iota
	KindCUDA
)

func (k Kind) String() string {
	switch k {
	case KindCPU:
		return "cpu"
	case KindCUDA:
		return "cuda"
	}
	return "unknown"
}

// Device is a placement handle. It is fixed for the duration of a run.
type Device struct {
	Kind  Kind
	Index int
}

// CPU returns the host device.
func CPU() Device {
	return Device{Kind: KindCPU}
}

func (d Device) String() string {
	if d.Kind == KindCPU {
		return "cpu"
	}
	return d.Kind.String() + ":" + strconv.Itoa(d.Index)
}

// Parse parses "cpu". Accelerators are reported by Probe but cannot be
// computed on, since the numeric engine runs on the host only.
func Parse(s string) (Device, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "cpu":
		return CPU(), nil
	case strings.HasPrefix(s, "cuda"):
		return Device{}, errors.Errorf("device %q: numeric engine supports cpu only", s)
	}
	return Device{}, errors.Errorf("device %q: unknown", s)
}

// NewDense allocates a rows x cols matrix on the device. data is used as the
// backing slice when non-nil.
func (d Device) NewDense(rows, cols int, data []float64) *mat.Dense {
	return mat.NewDense(rows, cols, data)
}

// Info describes one device found on the host.
type Info struct {
	Device Device
	Name   string
	Detail string
}

func (i Info) String() string {
	return fmt.Sprintf("%s\t%s\t%s", i.Device, i.Name, i.Detail)
}

// Probe lists the host CPU followed by any CUDA devices visible to this build.
func Probe() ([]Info, error) {
	infos := []Info{cpuInfo()}
	cuda, err := cudaDevices()
	if err != nil {
		return infos, err
	}
	return append(infos, cuda...), nil
}

func cpuInfo() Info {
	var features []string
	for _, f := range []cpuid.FeatureID{cpuid.SSE4, cpuid.AVX, cpuid.AVX2, cpuid.FMA3, cpuid.AVX512F, cpuid.ASIMD} {
		if cpuid.CPU.Supports(f) {
			features = append(features, f.String())
		}
	}
	return Info{
		Device: CPU(),
		Name:   cpuid.CPU.BrandName,
		Detail: fmt.Sprintf("cores=%d threads=%d features=%s",
			cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores, strings.Join(features, ",")),
	}
}

// Threads reports the number of logical cores, at least 1.
func Threads() int {
	if cpuid.CPU.LogicalCores > 0 {
		return cpuid.CPU.LogicalCores
	}
	return 1
}
