package lifestate

import "fmt"

// SincePost is the elapsed time since a bot's last post, with "never posted"
// as an explicit case instead of a large numeric placeholder. Every consumer
// treats "never" as maximal urgency: AtLeast and MoreThan report true for any
// threshold.
type SincePost struct {
	hours float64
	never bool
}

func SinceNever() SincePost {
	return SincePost{never: true}
}

func SinceHours(hours float64) SincePost {
	if hours < 0 {
		hours = 0
	}
	return SincePost{hours: hours}
}

func (s SincePost) IsNever() bool {
	return s.never
}

// Hours returns the elapsed hours and whether they are defined. Undefined for
// a bot that has never posted.
func (s SincePost) Hours() (float64, bool) {
	if s.never {
		return 0, false
	}
	return s.hours, true
}

func (s SincePost) AtLeast(hours float64) bool {
	return s.never || s.hours >= hours
}

func (s SincePost) MoreThan(hours float64) bool {
	return s.never || s.hours > hours
}

func (s SincePost) String() string {
	if s.never {
		return "never"
	}
	return fmt.Sprintf("%.1fh", s.hours)
}
