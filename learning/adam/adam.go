// Package adam implements the Adam optimizer with serializable state
package adam

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/neurlang/harness/config"
	"github.com/neurlang/harness/layer"
)

// RecordVersion is the current optimizer record version.
const RecordVersion = 1

type moment struct {
	m, v []float64
}

// Adam keeps the running moment estimates of every parameter it updated.
type Adam struct {
	config.Adam

	step    int
	moments map[string]*moment
}

// New creates an optimizer from cfg.
func New(cfg config.Adam) *Adam {
	return &Adam{Adam: cfg, moments: make(map[string]*moment)}
}

// Steps returns the number of updates applied so far.
func (a *Adam) Steps() int {
	return a.step
}

// Step applies one update with learning rate lr to every parameter using its gradient.
func (a *Adam) Step(params []layer.Param, lr float64) error {
	for _, p := range params {
		if len(p.Value) != len(p.Grad) {
			return errors.Errorf("adam: %s has %d values and %d gradients", p.Name, len(p.Value), len(p.Grad))
		}
		if m, ok := a.moments[p.Name]; ok && len(m.m) != len(p.Value) {
			return errors.Errorf("adam: %s has %d values, state has %d", p.Name, len(p.Value), len(m.m))
		}
	}
	a.step++
	c1 := 1 - math.Pow(a.Beta1, float64(a.step))
	c2 := 1 - math.Pow(a.Beta2, float64(a.step))
	for _, p := range params {
		m, ok := a.moments[p.Name]
		if !ok {
			m = &moment{m: make([]float64, len(p.Value)), v: make([]float64, len(p.Value))}
			a.moments[p.Name] = m
		}
		grad := p.Grad
		if a.WeightDecay != nil {
			grad = append([]float64(nil), p.Grad...)
			floats.AddScaled(grad, *a.WeightDecay, p.Value)
		}
		for i, g := range grad {
			m.m[i] = a.Beta1*m.m[i] + (1-a.Beta1)*g
			m.v[i] = a.Beta2*m.v[i] + (1-a.Beta2)*g*g
			p.Value[i] -= lr * (m.m[i] / c1) / (math.Sqrt(m.v[i]/c2) + a.Epsilon)
		}
	}
	return nil
}

// ParamState is the saved state of one parameter.
type ParamState struct {
	Name string    `json:"name"`
	M    []float64 `json:"m"`
	V    []float64 `json:"v"`
}

// Record is the serialized optimizer state.
type Record struct {
	Version int          `json:"version"`
	Step    int          `json:"step"`
	Params  []ParamState `json:"params"`
}

// Record snapshots the optimizer state, parameters sorted by name.
func (a *Adam) Record() Record {
	r := Record{Version: RecordVersion, Step: a.step, Params: []ParamState{}}
	for name, m := range a.moments {
		r.Params = append(r.Params, ParamState{
			Name: name,
			M:    append([]float64(nil), m.m...),
			V:    append([]float64(nil), m.v...),
		})
	}
	sort.Slice(r.Params, func(i, j int) bool { return r.Params[i].Name < r.Params[j].Name })
	return r
}

// LoadRecord replaces the optimizer state.
func (a *Adam) LoadRecord(r Record) error {
	if r.Version != RecordVersion {
		return errors.Errorf("adam: unsupported record version %d", r.Version)
	}
	moments := make(map[string]*moment, len(r.Params))
	for _, p := range r.Params {
		if len(p.M) != len(p.V) {
			return errors.Errorf("adam: %s has %d first and %d second moments", p.Name, len(p.M), len(p.V))
		}
		moments[p.Name] = &moment{m: append([]float64(nil), p.M...), v: append([]float64(nil), p.V...)}
	}
	a.step = r.Step
	a.moments = moments
	return nil
}
