// README: Children registered on a parent's profile.
package child

import (
	"fmt"
	"time"

	"ridepass/internal/types"
)

// MaxChildren is how many children one profile may register.
const MaxChildren = 5

const birthdateLayout = "2006-01-02"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Label is the one-letter Korean label shown next to the age.
func (g Gender) Label() string {
	if g == GenderMale {
		return "남"
	}
	return "여"
}

type Child struct {
	ID        types.ID  `json:"id"`
	UserID    types.ID  `json:"-"`
	Name      string    `json:"name"`
	Birthdate time.Time `json:"-"`
	Gender    Gender    `json:"gender"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// Age is the completed years at now.
func (c Child) Age(now time.Time) int {
	age := now.Year() - c.Birthdate.Year()
	if now.Month() < c.Birthdate.Month() ||
		(now.Month() == c.Birthdate.Month() && now.Day() < c.Birthdate.Day()) {
		age--
	}
	return age
}

// BirthdateLabel renders "2015년 5월 15일".
func (c Child) BirthdateLabel() string {
	return fmt.Sprintf("%d년 %d월 %d일", c.Birthdate.Year(), int(c.Birthdate.Month()), c.Birthdate.Day())
}

// View is the JSON shape returned to clients.
type View struct {
	Child
	Birthdate      string `json:"birthdate"`
	BirthdateLabel string `json:"birthdate_label"`
	Age            int    `json:"age"`
}

func (c Child) View(now time.Time) View {
	return View{
		Child:          c,
		Birthdate:      c.Birthdate.Format(birthdateLayout),
		BirthdateLabel: c.BirthdateLabel(),
		Age:            c.Age(now),
	}
}

func defaults() []Child {
	return []Child{
		{ID: "child1", Name: "김민준", Birthdate: date(2015, time.May, 15), Gender: GenderMale, Notes: "축구를 좋아합니다. 알레르기: 땅콩"},
		{ID: "child2", Name: "김서연", Birthdate: date(2017, time.August, 22), Gender: GenderFemale, Notes: "그림 그리기를 좋아합니다."},
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
