package metrics

import (
	"fmt"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

// DefaultInterval is the minimum time between two host readings.
const DefaultInterval = time.Second

// Sampler takes one host reading. It reports false when none is available.
type Sampler func() (float64, bool)

// Resource is a metric read from the host rather than from the batch. The
// last reading is reused until Interval has passed.
type Resource struct {
	name     string
	sample   Sampler
	format   func(float64) string
	Interval time.Duration

	now   func() time.Time
	last  time.Time
	value float64
	ok    bool
}

// NewResource returns a host metric backed by sample.
func NewResource(name string, sample Sampler, format func(float64) string) *Resource {
	return &Resource{name: name, sample: sample, format: format, Interval: DefaultInterval, now: time.Now}
}

func (r *Resource) Name() string { return r.name }

func (r *Resource) Update(Event) (float64, bool) {
	now := r.now()
	if r.last.IsZero() || now.Sub(r.last) >= r.Interval {
		r.value, r.ok = r.sample()
		r.last = now
	}
	return r.value, r.ok
}

func (r *Resource) Format(v float64) string { return r.format(v) }

// NewCPUUse reports the system wide CPU utilisation in percent.
func NewCPUUse() *Resource {
	return NewResource("cpu_use", func() (float64, bool) {
		p, err := cpu.Percent(0, false)
		if err != nil || len(p) == 0 {
			return 0, false
		}
		return p[0], true
	}, percent)
}

// NewCPUMemory reports the used system memory in bytes.
func NewCPUMemory() *Resource {
	return NewResource("cpu_memory", func() (float64, bool) {
		vm, err := mem.VirtualMemory()
		if err != nil {
			return 0, false
		}
		return float64(vm.Used), true
	}, func(v float64) string {
		return humanize.Bytes(uint64(v))
	})
}

// NewCPUTemperature reports the mean CPU sensor temperature in degrees Celsius.
func NewCPUTemperature() *Resource {
	return NewResource("cpu_temperature", cpuTemperature, func(v float64) string {
		return fmt.Sprintf("%.1f C", v)
	})
}

func cpuTemperature() (float64, bool) {
	temps, err := host.SensorsTemperatures()
	if err != nil || len(temps) == 0 {
		return 0, false
	}
	if len(temps) == 1 {
		return temps[0].Temperature, true
	}
	var sum float64
	var n int
	for _, t := range temps {
		if strings.Contains(t.SensorKey, "input") ||
			strings.Contains(t.SensorKey, "TC0P") ||
			strings.Contains(t.SensorKey, "ThermalZone") {
			sum += t.Temperature
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func percent(v float64) string { return fmt.Sprintf("%.2f %%", v) }
