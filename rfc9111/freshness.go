// Package rfc9111 implements the freshness and cacheability calculations of
// the HTTP caching specification over already-analyzed header values.
package rfc9111

import (
	"time"

	"github.com/httpdoctor/httpdoctor/headers"
)

// Freshness is the computed freshness state of one response.
type Freshness struct {
	// Lifetime is the freshness lifetime in seconds; valid only when
	// HasLifetime. Source names what decided it ("s-maxage", "max-age"
	// or "expires").
	Lifetime    int64  `json:"lifetime"`
	HasLifetime bool   `json:"hasLifetime"`
	Source      string `json:"source,omitempty"`

	// Age is the response's current age in seconds.
	Age int64 `json:"age"`
	// Remaining is Lifetime - Age, clamped to zero.
	Remaining int64 `json:"remaining"`
	// Stale is true when a lifetime exists and has been used up.
	Stale bool `json:"stale"`

	// DateUsable is false when the Date header was missing or invalid
	// and the receipt time had to stand in for it.
	DateUsable bool `json:"dateUsable"`
}

// Input carries the header values freshness depends on. Absent headers are
// represented by their Has* flag.
type Input struct {
	CacheControl headers.CacheControl

	// ExpiresPresent is true when the field occurred at all;
	// ExpiresValid only when it parsed. An Expires that is present but
	// unparseable means "already expired".
	Expires        time.Time
	ExpiresPresent bool
	ExpiresValid   bool

	Date      time.Time
	DateValid bool

	AgeSeconds int64
	AgeValid   bool

	// ReceivedAt is when the response was received; it substitutes for
	// an unusable Date and anchors resident time.
	ReceivedAt time.Time
}

// Compute calculates freshness at the given instant.
//
// §  4.2.1: use the first match of: s-maxage (shared caches), max-age,
// §  Expires minus Date. Otherwise no explicit expiration time is present
// §  and only heuristic freshness might apply.
func Compute(in Input, now time.Time) Freshness {
	f := Freshness{DateUsable: in.DateValid}

	date := in.Date
	if !in.DateValid {
		date = in.ReceivedAt
	}

	if secs, ok := in.CacheControl.Seconds("s-maxage"); ok {
		f.Lifetime, f.HasLifetime, f.Source = secs, true, "s-maxage"
	} else if secs, ok := in.CacheControl.Seconds("max-age"); ok {
		f.Lifetime, f.HasLifetime, f.Source = secs, true, "max-age"
	} else if in.ExpiresPresent {
		f.Source = "expires"
		f.HasLifetime = true
		if in.ExpiresValid {
			if lifetime := int64(in.Expires.Sub(date) / time.Second); lifetime > 0 {
				f.Lifetime = lifetime
			}
		}
		// invalid Expires stays at lifetime 0: already expired
	}

	f.Age = currentAge(in, now)
	if f.HasLifetime {
		f.Remaining = f.Lifetime - f.Age
		if f.Remaining <= 0 {
			f.Remaining = 0
			f.Stale = true
		}
	}
	return f
}

// §  4.2.3.  Calculating Age
// §
// §    corrected_age_value = age_value + response_delay
// §    resident_time       = now - response_time
// §    current_age         = corrected_initial_age + resident_time
//
// The response delay term is folded into ReceivedAt here; a checker holds
// the response for analysis rather than serving it later, so resident time
// is usually zero.
func currentAge(in Input, now time.Time) int64 {
	var age int64
	if in.AgeValid {
		age = in.AgeSeconds
	}
	if resident := int64(now.Sub(in.ReceivedAt) / time.Second); resident > 0 {
		age += resident
	}
	return age
}
