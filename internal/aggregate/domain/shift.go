package domain

// ShiftDef is one of the three fixed 8-hour staffing windows. Shifts
// partition the 24 hours totally and disjointly; per-shift revenue must
// sum back to the global non-reversed total.
type ShiftDef struct {
	Key   string
	Label string
}

// Shifts in clock order.
var Shifts = []ShiftDef{
	{Key: "shift_1", Label: "12:00 AM - 8:00 AM"},
	{Key: "shift_2", Label: "8:00 AM - 4:00 PM"},
	{Key: "shift_3", Label: "4:00 PM - 11:59 PM"},
}

// ShiftKeyFor buckets an hour of day (0..23) into its shift. Derived
// solely from hour-of-day.
func ShiftKeyFor(hour int) string {
	switch {
	case hour < 8:
		return Shifts[0].Key
	case hour < 16:
		return Shifts[1].Key
	default:
		return Shifts[2].Key
	}
}
