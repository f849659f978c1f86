package entity

import "fmt"

// AgeDescription renders the lifetime in the coarsest two units that fit.
func (e *Entity) AgeDescription() string {
	return DescribeAge(e.state.LifeSeconds)
}

// DescribeAge buckets seconds into seconds, minutes, hours+minutes or days+hours.
func DescribeAge(seconds float64) string {
	s := int64(seconds)
	if s < 0 {
		s = 0
	}
	switch {
	case s < 60:
		return fmt.Sprintf("%d seconds", s)
	case s < 3600:
		return fmt.Sprintf("%d minutes", s/60)
	case s < 86400:
		return fmt.Sprintf("%d hours %d minutes", s/3600, (s%3600)/60)
	default:
		return fmt.Sprintf("%d days %d hours", s/86400, (s%86400)/3600)
	}
}

type levelTitle struct {
	minLevel int
	title    string
}

var levelTitles = []levelTitle{
	{20, "Kindred Spirit"},
	{10, "Confidant"},
	{5, "Friend"},
	{2, "Acquaintance"},
	{1, "Newborn"},
}

// LevelTitle names the relationship stage reached at the current level.
func (e *Entity) LevelTitle() string {
	return TitleForLevel(e.state.Level)
}

func TitleForLevel(level int) string {
	for _, lt := range levelTitles {
		if level >= lt.minLevel {
			return lt.title
		}
	}
	return levelTitles[len(levelTitles)-1].title
}
