package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout - формат календарных дат в API и во вводе.
const DateLayout = "2006-01-02"

// Date - календарный день без времени и зоны.
type Date struct {
	t time.Time
}

// NewDate обрезает t до календарного дня (в зоне t).
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Today возвращает текущий день по now.
func Today(now func() time.Time) Date {
	if now == nil {
		now = time.Now
	}
	return NewDate(now())
}

// ParseDate разбирает "YYYY-MM-DD"; полные ISO-метки обрезаются по 'T'.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t: t}, nil
}

// IsZero сообщает, что дата не задана.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Before сообщает, что d раньше o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After сообщает, что d позже o.
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Time возвращает полночь UTC этого дня.
func (d Date) Time() time.Time { return d.t }

func (d Date) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalJSON кодирует день как "YYYY-MM-DD" (пустая строка для нулевой даты).
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON принимает "YYYY-MM-DD", ISO-метки, "" и null.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(*s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
