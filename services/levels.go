package services

import "time"

// Level is a points band of the trader ladder.
type Level struct {
	Name      string
	MinPoints int
}

var Levels = []Level{
	{Name: "Beginner Trader", MinPoints: 0},
	{Name: "Intermediate Trader", MinPoints: 1000},
	{Name: "Advanced Trader", MinPoints: 2500},
	{Name: "Expert Investor", MinPoints: 5000},
	{Name: "Master Investor", MinPoints: 10000},
}

// LevelStatus places a points total on the ladder.
type LevelStatus struct {
	Current  string
	Next     string // empty at the top level
	Progress int    // percent through the current band
}

func LevelFor(points int) LevelStatus {
	if points < 0 {
		points = 0
	}
	idx := 0
	for i, l := range Levels {
		if points >= l.MinPoints {
			idx = i
		}
	}
	if idx == len(Levels)-1 {
		return LevelStatus{Current: Levels[idx].Name, Progress: 100}
	}
	cur, next := Levels[idx], Levels[idx+1]
	progress := (points - cur.MinPoints) * 100 / (next.MinPoints - cur.MinPoints)
	return LevelStatus{Current: cur.Name, Next: next.Name, Progress: progress}
}

// NextStreak applies the daily streak rule for activity at now, given the
// last active day. Days are UTC calendar days.
func NextStreak(current int, lastActive *time.Time, now time.Time) int {
	today := utcDay(now)
	if lastActive == nil || current <= 0 {
		return 1
	}
	switch days := int(today.Sub(utcDay(*lastActive)).Hours() / 24); {
	case days <= 0:
		return current
	case days == 1:
		return current + 1
	default:
		return 1
	}
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
