package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDelivery forwards to all sinks, returning the first error.
func (m *MultiSink) RecordDelivery(rec DeliveryRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordDelivery(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordTick forwards tick aggregates to sinks that support them.
func (m *MultiSink) RecordTick(stats TickStats) error {
	for _, s := range m.Sinks {
		if tr, ok := s.(TickRecorder); ok {
			if err := tr.RecordTick(stats); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordTruckState forwards truck snapshots to sinks that support them.
func (m *MultiSink) RecordTruckState(st TruckState) error {
	for _, s := range m.Sinks {
		if tr, ok := s.(TruckStateRecorder); ok {
			if err := tr.RecordTruckState(st); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordBlocked forwards road-block halts to sinks that support them.
func (m *MultiSink) RecordBlocked(rec BlockedRecord) error {
	for _, s := range m.Sinks {
		if br, ok := s.(BlockedRecorder); ok {
			if err := br.RecordBlocked(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
