package calendar

import "fmt"

// DaysPerMonth is the display approximation used for age breakdowns.
const DaysPerMonth = 30

// Age is an age in days with an approximate month breakdown.
type Age struct {
	Days          int `json:"days"`
	Months        int `json:"months"`
	RemainingDays int `json:"remainingDays"`
}

// Breakdown splits days into 30-day months and leftover days.
func Breakdown(days int) Age {
	return Age{
		Days:          days,
		Months:        days / DaysPerMonth,
		RemainingDays: days % DaysPerMonth,
	}
}

// String renders "<days> days (<m> month(s), <d> days)".
func (a Age) String() string {
	unit := "months"
	if a.Months == 1 {
		unit = "month"
	}
	return fmt.Sprintf("%d days (%d %s, %d days)", a.Days, a.Months, unit, a.RemainingDays)
}
