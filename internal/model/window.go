package model

import "cloud.google.com/go/civil"

// WeekWindow is one 7-day publication week used as the unit of a fetch.
type WeekWindow struct {
	Start civil.Date
	End   civil.Date
	Code  string // ISO week (2 digits) followed by ISO year, e.g. "062024"
}

func (w WeekWindow) String() string {
	return w.Code + " (" + w.Start.String() + " .. " + w.End.String() + ")"
}
