package budget

import "fmt"

// Badge is the reward tier shown next to a streak.
type Badge struct {
	Days  int
	Tier  int // 0 (Getting Started) through 4 (Budget Master)
	Title string
	Icon  string
}

// BadgeFor returns the badge earned by a streak of days.
func BadgeFor(days int) Badge {
	b := Badge{Days: days}
	switch {
	case days >= 30:
		b.Tier, b.Title, b.Icon = 4, "Budget Master", "👑"
	case days >= 14:
		b.Tier, b.Title, b.Icon = 3, "Budget Champion", "🏆"
	case days >= 7:
		b.Tier, b.Title, b.Icon = 2, "Budget Hero", "🎖"
	case days >= 3:
		b.Tier, b.Title, b.Icon = 1, "Budget Star", "⭐"
	default:
		b.Tier, b.Title, b.Icon = 0, "Getting Started", "🌱"
	}
	return b
}

// Message is the one-line caption under the badge title.
func (b Badge) Message() string {
	switch b.Days {
	case 0:
		return "Start your streak!"
	case 1:
		return "1 day on budget!"
	default:
		return fmt.Sprintf("%d days on budget!", b.Days)
	}
}
