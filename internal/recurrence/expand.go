package recurrence

import (
	"fmt"
	"time"
)

// Expand generates the due dates for the child occurrences of a recurring
// item: one date per step, i = 1..repeat, each offset i cycle steps from
// base. A cycle of None produces no children regardless of repeat; a repeat
// of 0 produces no children regardless of cycle.
func Expand(base time.Time, c Cycle, repeat int) ([]time.Time, error) {
	if repeat < 0 || repeat > MaxRepeat {
		return nil, fmt.Errorf("repeat count %d out of range [0, %d]", repeat, MaxRepeat)
	}
	if c.Freq == None || repeat == 0 {
		return nil, nil
	}

	dates := make([]time.Time, 0, repeat)
	for i := 1; i <= repeat; i++ {
		dates = append(dates, step(base, c, i))
	}
	return dates, nil
}

func step(base time.Time, c Cycle, i int) time.Time {
	switch c.Freq {
	case EveryNDays:
		return base.AddDate(0, 0, i*c.Days)
	case Monthly:
		return base.AddDate(0, i, 0)
	case Yearly:
		return base.AddDate(i, 0, 0)
	}
	return base
}
