package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
)

// Row is the aggregate of one metric over one epoch phase.
type Row struct {
	Metric string
	Phase  Phase
	Epoch  int
	Count  int
	Mean   float64
	Min    float64
	Max    float64
	Text   string
}

// Summary collects the rows of a run in the order they were produced.
type Summary struct {
	Rows []Row
}

// Last returns the most recent row of metric in phase.
func (s Summary) Last(metric string, phase Phase) (Row, bool) {
	for i := len(s.Rows) - 1; i >= 0; i-- {
		if r := s.Rows[i]; r.Metric == metric && r.Phase == phase {
			return r, true
		}
	}
	return Row{}, false
}

// String renders one line per metric and phase with the mean of every epoch.
func (s Summary) String() string {
	type key struct {
		metric string
		phase  Phase
	}
	var keys []key
	cells := map[key][]string{}
	for _, r := range s.Rows {
		k := key{r.Metric, r.Phase}
		if _, ok := cells[k]; !ok {
			keys = append(keys, k)
		}
		cells[k] = append(cells[k], fmt.Sprintf("%d:%s", r.Epoch, r.Text))
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].metric != keys[j].metric {
			return keys[i].metric < keys[j].metric
		}
		return keys[i].phase < keys[j].phase
	})
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%-16s %-5s %s\n", k.metric, k.phase, strings.Join(cells[k], "  "))
	}
	return b.String()
}

// Recorder aggregates metrics per epoch phase and logs a line per phase.
type Recorder struct {
	metrics []Metric
	log     *zap.Logger
	values  map[string][]float64
	summary Summary
}

// NewRecorder returns a recorder of ms. A nil log discards output.
func NewRecorder(log *zap.Logger, ms ...Metric) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{metrics: ms, log: log, values: map[string][]float64{}}
}

func (r *Recorder) OnBatch(e Event) {
	for _, m := range r.metrics {
		v, ok := m.Update(e)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		r.values[m.Name()] = append(r.values[m.Name()], v)
	}
	r.log.Debug("batch",
		zap.String("phase", string(e.Phase)),
		zap.Int("epoch", e.Epoch),
		zap.Int("iteration", e.Iteration),
		zap.Int("items", e.Items),
		zap.Float64("loss", e.Loss))
}

func (r *Recorder) OnEpochEnd(phase Phase, epoch int) {
	fields := []zap.Field{zap.String("phase", string(phase)), zap.Int("epoch", epoch)}
	for _, m := range r.metrics {
		data := stats.Float64Data(r.values[m.Name()])
		if data.Len() == 0 {
			continue
		}
		mean, _ := data.Mean()
		min, _ := data.Min()
		max, _ := data.Max()
		row := Row{
			Metric: m.Name(),
			Phase:  phase,
			Epoch:  epoch,
			Count:  data.Len(),
			Mean:   mean,
			Min:    min,
			Max:    max,
			Text:   m.Format(mean),
		}
		r.summary.Rows = append(r.summary.Rows, row)
		fields = append(fields, zap.String(m.Name(), row.Text))
	}
	r.values = map[string][]float64{}
	r.log.Info("epoch", fields...)
}

// Summary returns the rows recorded so far.
func (r *Recorder) Summary() Summary {
	return Summary{Rows: append([]Row(nil), r.summary.Rows...)}
}
