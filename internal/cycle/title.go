// Package cycle parses training-cycle coordinates out of free-text workout and
// routine titles and computes the title of the following session.
package cycle

import (
	"fmt"
	"regexp"
	"strconv"
)

// Weeks is the length of one training block.
const Weeks = 8

var (
	weekPattern = regexp.MustCompile(`(?i)week\s*(\d+)`)
	dayPattern  = regexp.MustCompile(`(?i)day\s*(\d+)`)
)

// Coordinate is the (week, day) position of a session within the block.
type Coordinate struct {
	Week int
	Day  int
}

// Parse extracts the week and day from title. Missing tokens default to 1.
func Parse(title string) Coordinate {
	coord := Coordinate{Week: 1, Day: 1}
	if week, ok := WeekOf(title); ok {
		coord.Week = week
	}
	if day, ok := DayOf(title); ok {
		coord.Day = day
	}
	return coord
}

// WeekOf returns the week number in title and whether one was present.
func WeekOf(title string) (int, bool) {
	return firstNumber(weekPattern, title)
}

// DayOf returns the day number in title and whether one was present.
func DayOf(title string) (int, bool) {
	return firstNumber(dayPattern, title)
}

func firstNumber(pattern *regexp.Regexp, title string) (int, bool) {
	match := pattern.FindStringSubmatch(title)
	if len(match) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextWeek returns the week after week, wrapping to 1 once the block is complete.
func NextWeek(week int) int {
	if week >= Weeks {
		return 1
	}
	return week + 1
}

// IsBlockEnd reports whether week closes the block and the next session starts a deload.
func IsBlockEnd(week int) bool {
	return week >= Weeks
}

// NextRoutineTitle returns the title the routine should carry for the next session.
//
//	"Day 1 - Week 2" -> "Day 1 - Week 3"
//	"Day 2 - Week 8" -> "Day 2 - Week 1"
//	"Week 5"         -> "Week 6"
//	"Day 3"          -> "Day 4"
//	"Push"           -> "Week 2"
func NextRoutineTitle(title string) string {
	week, hasWeek := WeekOf(title)
	day, hasDay := DayOf(title)
	switch {
	case hasWeek && hasDay:
		return fmt.Sprintf("Day %d - Week %d", day, NextWeek(week))
	case hasWeek:
		return fmt.Sprintf("Week %d", NextWeek(week))
	case hasDay:
		return fmt.Sprintf("Day %d", day+1)
	default:
		return "Week 2"
	}
}
