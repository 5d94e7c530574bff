package gameday

import (
	"strings"
	"time"

	"github.com/fortuna/gameday/pkg/fetch"
	"github.com/fortuna/gameday/pkg/literal"
)

// attrs is a consumable copy of an element's attributes. Every take removes
// the key so whatever is left over becomes the record's Extra map.
type attrs map[string]string

func attrsOf(el *fetch.Element) attrs {
	return attrs(el.AttrMap())
}

// raw removes and returns the verbatim value.
func (a attrs) raw(name string) string {
	v := a[name]
	delete(a, name)
	return v
}

// take removes and coerces the value. Missing keys yield an Absent value.
func (a attrs) take(name string) literal.Value {
	v, ok := a[name]
	if !ok {
		return literal.Value{}
	}
	delete(a, name)
	return literal.Coerce(v)
}

// timeOfDay removes an "HHMMSS" value and returns it as a UTC time on day
// zero. Short values are left-padded with zeros.
func (a attrs) timeOfDay(name string) *time.Time {
	v, ok := a[name]
	if !ok {
		return nil
	}
	delete(a, name)
	return parseTimeOfDay(v)
}

// instant removes an ISO-8601 Zulu timestamp.
func (a attrs) instant(name string) *time.Time {
	v, ok := a[name]
	if !ok {
		return nil
	}
	delete(a, name)
	return parseZulu(v)
}

// rest returns the untouched attributes, or nil when none are left.
func (a attrs) rest() map[string]literal.Value {
	if len(a) == 0 {
		return nil
	}
	return literal.Map(a)
}

func parseTimeOfDay(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > 6 {
		return nil
	}
	v = strings.Repeat("0", 6-len(v)) + v
	t, err := time.ParseInLocation("150405", v, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}

func parseZulu(v string) *time.Time {
	t, err := time.Parse("2006-01-02T15:04:05Z", strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
