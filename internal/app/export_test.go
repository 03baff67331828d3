package app

import "time"

func (s *LogService) SetClock(now func() time.Time)    { s.now = now }
func (s *ChartsService) SetClock(now func() time.Time) { s.now = now }
func (s *IngestService) SetClock(now func() time.Time) { s.now = now }
