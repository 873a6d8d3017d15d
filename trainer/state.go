package trainer

import "go.uber.org/zap"

// State is a stage of the run lifecycle.
type State string

const (
	FreshInit       State = "FRESH_INIT"
	ConfigPersisted State = "CONFIG_PERSISTED"
	DataReady       State = "DATA_READY"
	LearnerReady    State = "LEARNER_READY"
	EpochLoop       State = "EPOCH_LOOP"
	Finalized       State = "FINALIZED"
	Failed          State = "FAILED"
)

type machine struct {
	state State
	log   *zap.Logger
}

func (m *machine) enter(s State, fields ...zap.Field) {
	fields = append([]zap.Field{zap.String("from", string(m.state)), zap.String("to", string(s))}, fields...)
	m.log.Info("state", fields...)
	m.state = s
}

func (m *machine) fail(err error) {
	m.log.Error("run failed", zap.String("state", string(m.state)), zap.Error(err))
	m.state = Failed
}
