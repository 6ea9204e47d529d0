// internal/monitor/snapshot.go
package monitor

// Snapshot is the current link health plus how it got there.
// It contains no logic beyond folding in one Result at a time.
type Snapshot struct {
	Health    Health
	Failures  int // consecutive failed probes
	LastError error
}

// Apply folds one probe result into the snapshot.
// It reports whether the externally visible state changed.
func (s *Snapshot) Apply(res Result) bool {
	if res.Err == nil {
		changed := s.Health != HealthOK
		s.Health = HealthOK
		s.Failures = 0
		s.LastError = nil
		return changed
	}

	s.Failures++
	s.LastError = res.Err

	changed := s.Health != HealthError
	s.Health = HealthError
	return changed
}
