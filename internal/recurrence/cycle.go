package recurrence

import "fmt"

// Freq is the recurrence frequency of a chore, event, or bill.
type Freq int

const (
	None Freq = iota
	EveryNDays
	Monthly
	Yearly
)

// Legacy integer codes used on the wire and in storage. Monthly and yearly
// cycles are encoded as negative sentinels; positive values mean "every N
// days". The codes never leak past ParseCode/Code.
const (
	codeNone    = 0
	codeMonthly = -30
	codeYearly  = -365
)

// MaxRepeat bounds how many child occurrences a single create may spawn.
const MaxRepeat = 365

// Cycle is a parsed recurrence cycle. Days is only meaningful when
// Freq == EveryNDays.
type Cycle struct {
	Freq Freq
	Days int
}

// ParseCode translates a legacy integer cycle code into a Cycle. Negative
// codes other than the monthly/yearly sentinels are rejected.
func ParseCode(code int) (Cycle, error) {
	switch {
	case code == codeNone:
		return Cycle{Freq: None}, nil
	case code > 0:
		return Cycle{Freq: EveryNDays, Days: code}, nil
	case code == codeMonthly:
		return Cycle{Freq: Monthly}, nil
	case code == codeYearly:
		return Cycle{Freq: Yearly}, nil
	default:
		return Cycle{}, fmt.Errorf("invalid cycle code %d", code)
	}
}

// Code returns the legacy integer encoding of the cycle.
func (c Cycle) Code() int {
	switch c.Freq {
	case EveryNDays:
		return c.Days
	case Monthly:
		return codeMonthly
	case Yearly:
		return codeYearly
	}
	return codeNone
}

// Describe returns a human-readable description of the cycle.
func (c Cycle) Describe() string {
	switch c.Freq {
	case EveryNDays:
		if c.Days == 1 {
			return "Repeats daily"
		}
		if c.Days == 7 {
			return "Repeats weekly"
		}
		return fmt.Sprintf("Repeats every %d days", c.Days)
	case Monthly:
		return "Repeats monthly"
	case Yearly:
		return "Repeats yearly"
	}
	return "Does not repeat"
}
