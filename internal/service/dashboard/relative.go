package dashboard

import (
	"fmt"
	"math"
	"time"
)

// RelativeTime renders the distance from t to now in words, such as
// "30 minutes ago" or "about 2 hours ago".
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		return "in " + distance(-d)
	}
	return distance(d) + " ago"
}

func distance(d time.Duration) string {
	minutes := int(math.Round(d.Minutes()))

	switch {
	case d < 30*time.Second:
		return "less than a minute"
	case minutes <= 1:
		return "1 minute"
	case minutes < 45:
		return fmt.Sprintf("%d minutes", minutes)
	case minutes < 90:
		return "about 1 hour"
	case minutes < 24*60:
		return fmt.Sprintf("about %d hours", int(math.Round(d.Hours())))
	case minutes < 42*60:
		return "1 day"
	case minutes < 30*24*60:
		return fmt.Sprintf("%d days", int(math.Round(d.Hours()/24)))
	case minutes < 60*24*60:
		return "about 1 month"
	case minutes < 365*24*60:
		return fmt.Sprintf("%d months", int(math.Round(d.Hours()/24/30)))
	}

	years := int(math.Floor(d.Hours() / 24 / 365))
	if years <= 1 {
		return "about 1 year"
	}
	return fmt.Sprintf("about %d years", years)
}
