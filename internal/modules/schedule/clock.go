// README: 12-hour wall-clock times ("오전 7:30", "7:30 PM") used by route legs.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

type designator int

const (
	designatorKorean designator = iota
	designatorEnglish
)

var (
	// AM/PM may follow the digits directly ("7:30PM") but not sit inside a word.
	periodPattern = regexp.MustCompile(`(?i)(오전|오후)|(?:^|[^A-Z])([AP]M)\b`)
	hhmmPattern   = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// Clock is a time of day with minute precision. Hour is 0-23.
type Clock struct {
	Hour   int
	Minute int
	style  designator
}

// ParseClock reads a 12-hour time with a period marker. Both the Korean
// markers (오전/오후) and AM/PM are accepted, on either side of the digits.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	var period string
	if m := periodPattern.FindStringSubmatch(s); m != nil {
		period = m[1] + m[2]
	}
	hm := hhmmPattern.FindStringSubmatch(s)
	if period == "" || hm == nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	hour, _ := strconv.Atoi(hm[1])
	minute, _ := strconv.Atoi(hm[2])
	if hour > 12 || minute > 59 {
		return Clock{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	c := Clock{Minute: minute}
	pm := false
	switch strings.ToUpper(period) {
	case "오후":
		pm = true
	case "AM":
		c.style = designatorEnglish
	case "PM":
		pm = true
		c.style = designatorEnglish
	}
	switch {
	case pm && hour < 12:
		hour += 12
	case !pm && hour == 12:
		hour = 0
	}
	c.Hour = hour
	return c, nil
}

// MinuteOfDay returns minutes since midnight.
func (c Clock) MinuteOfDay() int {
	return c.Hour*60 + c.Minute
}

// AddMinutes moves the clock forward, wrapping past midnight.
func (c Clock) AddMinutes(m int) Clock {
	total := ((c.MinuteOfDay()+m)%minutesPerDay + minutesPerDay) % minutesPerDay
	return Clock{Hour: total / 60, Minute: total % 60, style: c.style}
}

func (c Clock) String() string {
	h := c.Hour % 12
	if h == 0 {
		h = 12
	}
	pm := c.Hour >= 12
	if c.style == designatorEnglish {
		p := "AM"
		if pm {
			p = "PM"
		}
		return fmt.Sprintf("%d:%02d %s", h, c.Minute, p)
	}
	p := "오전"
	if pm {
		p = "오후"
	}
	return fmt.Sprintf("%s %d:%02d", p, h, c.Minute)
}

// TimeOptions lists the selectable pickup times: 오전 6:00 to 오후 10:30 in
// 30 minute steps.
func TimeOptions() []string {
	out := make([]string, 0, 34)
	for hour := 6; hour <= 22; hour++ {
		for _, minute := range []int{0, 30} {
			out = append(out, Clock{Hour: hour, Minute: minute}.String())
		}
	}
	return out
}
