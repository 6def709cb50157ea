package dashboard

import (
	"time"

	"github.com/taskflow/vacation/client"
)

// maxEntriesPerDay caps how many requests a day cell shows before collapsing
// the rest into an overflow count.
const maxEntriesPerDay = 3

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(d client.Date) Month { return Month{Year: d.Year(), Month: d.Month()} }

func CurrentMonth() Month { return MonthOf(client.Today()) }

func (m Month) Prev() Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) Next() Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) Label() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

// DayCell is one day of the month grid.
type DayCell struct {
	Day      int
	Date     client.Date
	Visible  []client.VacationRequest
	Overflow int // entries beyond the display cap
}

// Grid is a month laid out for a Sunday-first calendar: LeadingBlanks empty
// slots, then one cell per day.
type Grid struct {
	Month         Month
	LeadingBlanks int
	Cells         []DayCell
}

// BuildGrid distributes the given requests over the month's days. A request
// occupies every day of its inclusive [start, end] range.
func BuildGrid(m Month, vacations []client.VacationRequest) Grid {
	first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	g := Grid{
		Month:         m,
		LeadingBlanks: int(first.Weekday()), // Sunday = 0
		Cells:         make([]DayCell, 0, daysInMonth),
	}
	for day := 1; day <= daysInMonth; day++ {
		date := client.NewDate(m.Year, m.Month, day)
		cell := DayCell{Day: day, Date: date}
		for _, vr := range vacations {
			if covers(vr, date) {
				if len(cell.Visible) < maxEntriesPerDay {
					cell.Visible = append(cell.Visible, vr)
				} else {
					cell.Overflow++
				}
			}
		}
		g.Cells = append(g.Cells, cell)
	}
	return g
}

func covers(vr client.VacationRequest, day client.Date) bool {
	if vr.StartDate.IsZero() || vr.EndDate.IsZero() {
		return false
	}
	return !day.Before(vr.StartDate.Time) && !day.After(vr.EndDate.Time)
}
