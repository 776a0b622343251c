package main

import (
	"fmt"
	"strconv"
	"time"
)

// msDuration is a duration flag that also takes a bare integer as
// milliseconds, so "--delay 200" and "--delay 200ms" are the same.
// Its type name is "duration" so pflag's GetDuration reads it.
type msDuration time.Duration

// newMSDuration sets *p to def and returns a flag value backed by p.
func newMSDuration(def time.Duration, p *time.Duration) *msDuration {
	*p = def
	return (*msDuration)(p)
}

// Set implements pflag.Value.
func (d *msDuration) Set(s string) error {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = msDuration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("expected milliseconds or a duration such as 1.5s: %w", err)
	}
	*d = msDuration(v)
	return nil
}

// String implements pflag.Value.
func (d *msDuration) String() string {
	return time.Duration(*d).String()
}

// Type implements pflag.Value.
func (d *msDuration) Type() string {
	return "duration"
}
