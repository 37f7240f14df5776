package narrative

// Thresholds gates the conditional sentences of every synthesizer.
type Thresholds struct {
	// on-leave
	WeekendFriday   float64
	WeekendSaturday float64
	LeaveMonth      int
	LeaveStreak     int

	// late check-ins
	LateWeekday float64
	LateMonth   int

	// non-checked-in
	NonCheckedInWeekday float64
	NonCheckedInMonth   int

	// leave trends
	PlannedWeekday   float64
	PlannedMonth     float64
	FullUrgencyShare float64
}

// DefaultThresholds returns the stock gate values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WeekendFriday:   70,
		WeekendSaturday: 75,
		LeaveMonth:      100,
		LeaveStreak:     30,

		LateWeekday: 0,
		LateMonth:   0,

		NonCheckedInWeekday: 1,
		NonCheckedInMonth:   2,

		PlannedWeekday:   25,
		PlannedMonth:     30,
		FullUrgencyShare: 100.0,
	}
}
