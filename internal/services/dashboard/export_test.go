package dashboard

import "time"

// SetClock подменяет часы сервиса.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}
