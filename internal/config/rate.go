package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rate is a request budget over a fixed period, e.g. 10 per minute.
type Rate struct {
	Limit  int
	Period time.Duration
}

var periodUnits = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
}

// ParseRate accepts "10/minute", "10 per minute" and plural unit forms.
func ParseRate(value string) (Rate, error) {
	value = strings.ToLower(strings.TrimSpace(value))

	var count, unit string
	if i := strings.Index(value, "/"); i >= 0 {
		count, unit = value[:i], value[i+1:]
	} else if fields := strings.Fields(value); len(fields) == 3 && fields[1] == "per" {
		count, unit = fields[0], fields[2]
	} else {
		return Rate{}, fmt.Errorf("rate %q must look like \"10/minute\" or \"10 per minute\"", value)
	}

	limit, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil || limit <= 0 {
		return Rate{}, fmt.Errorf("rate %q has an invalid count", value)
	}

	unit = strings.TrimSuffix(strings.TrimSpace(unit), "s")
	period, ok := periodUnits[unit]
	if !ok {
		return Rate{}, fmt.Errorf("rate %q has an unknown unit (valid: second, minute, hour, day)", value)
	}

	return Rate{Limit: limit, Period: period}, nil
}

// String renders the rate the way the capability document advertises it.
func (r Rate) String() string {
	unit := "second"
	for name, d := range periodUnits {
		if d == r.Period {
			unit = name
			break
		}
	}
	return fmt.Sprintf("%d per %s", r.Limit, unit)
}
