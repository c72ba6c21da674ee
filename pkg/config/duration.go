package config

import (
	"fmt"
	"time"
)

// DurationRule checks one duration setting and describes the violation.
type DurationRule func(d time.Duration) (ok bool, want string)

// Positive accepts d > 0.
func Positive(d time.Duration) (bool, string) {
	return d > 0, "> 0"
}

// NonNegative accepts d >= 0. Zero usually disables the feature.
func NonNegative(d time.Duration) (bool, string) {
	return d >= 0, ">= 0"
}

// Between accepts lo <= d <= hi.
func Between(lo, hi time.Duration) DurationRule {
	return func(d time.Duration) (bool, string) {
		return d >= lo && d <= hi, fmt.Sprintf("in [%v, %v]", lo, hi)
	}
}

// CheckDuration returns nil when d satisfies rule, otherwise an error naming
// the setting. The nil result composes with errors.Join.
func CheckDuration(name string, d time.Duration, rule DurationRule) error {
	if ok, want := rule(d); !ok {
		return fmt.Errorf("%s must be %s, got %v", name, want, d)
	}
	return nil
}
