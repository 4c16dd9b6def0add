package scada

import "time"

// NextStatusTime returns when the report after last is due: the start of
// the interval following the one last falls in.
func NextStatusTime(last time.Time, interval time.Duration) time.Time {
	return SlotStart(last, interval).Add(interval)
}

// SlotStart aligns t down to a whole interval since the Unix epoch.
func SlotStart(t time.Time, interval time.Duration) time.Time {
	iv := int64(interval / time.Second)
	if iv < 1 {
		iv = 1
	}
	s := t.Unix()
	return time.Unix(s-s%iv, 0).In(t.Location())
}

// statusLoop enqueues one StatusTick per report interval until stop is
// closed. If it wakes late it fires at once; if it wakes early (the wall
// clock stepped) it waits again. The next deadline is always computed from
// the time the tick actually went out.
func (s *Scada) statusLoop(stop <-chan struct{}) error {
	last := s.now()
	for {
		next := NextStatusTime(last, s.interval)
		for wait := next.Sub(s.now()); wait > 0; wait = next.Sub(s.now()) {
			timer := time.NewTimer(wait)
			select {
			case <-stop:
				timer.Stop()
				return nil
			case <-timer.C:
			}
		}

		select {
		case <-stop:
			return nil
		default:
		}
		s.tick(SlotStart(last, s.interval))
		last = s.now()
	}
}
