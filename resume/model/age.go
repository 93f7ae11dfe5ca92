package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseBirthDate parses "DD/MM/YYYY" (single-digit day and month accepted).
func ParseBirthDate(raw string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("birth date %q: want DD/MM/YYYY", raw)
	}
	day, errD := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	year, errY := strconv.Atoi(parts[2])
	if errD != nil || errM != nil || errY != nil {
		return time.Time{}, fmt.Errorf("birth date %q: non-numeric component", raw)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, fmt.Errorf("birth date %q: no such calendar day", raw)
	}
	return t, nil
}

// DeriveAge returns completed years between birthDate and now, counting a birthday
// only once its day has been reached in now's year.
func DeriveAge(birthDate string, now time.Time) (int, bool) {
	born, err := ParseBirthDate(birthDate)
	if err != nil {
		return 0, false
	}
	if now.Before(born) {
		return 0, false
	}
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	return age, true
}

// WithDerivedAge recomputes PersonalInfo.Age from BirthDate, clearing it when the
// birth date is absent or unparseable.
func (d ResumeDocument) WithDerivedAge(now time.Time) ResumeDocument {
	if age, ok := DeriveAge(d.PersonalInfo.BirthDate, now); ok {
		d.PersonalInfo.Age = &age
	} else {
		d.PersonalInfo.Age = nil
	}
	return d
}
