package handlers

import (
	"fmt"
	"time"

	"github.com/hupe1980/opscouncil/intent"
)

// Parameter extraction for the values the rule set produces: time.Time for
// dates, int for month/year, string for identifiers and questions. A missing
// or mistyped parameter is a bug in the rule set, reported as an error.

func dateParam(cmd intent.Command, key string) (time.Time, error) {
	value, ok := cmd.Params[key]
	if !ok {
		return time.Time{}, fmt.Errorf("command %q is missing parameter %q", cmd.Name, key)
	}
	date, ok := value.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("command %q parameter %q is %T, want time.Time", cmd.Name, key, value)
	}
	return date, nil
}

func rangeParams(cmd intent.Command) (start, end time.Time, err error) {
	if start, err = dateParam(cmd, intent.ParamStartDate); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end, err = dateParam(cmd, intent.ParamEndDate); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func intParam(cmd intent.Command, key string) (int, error) {
	value, ok := cmd.Params[key]
	if !ok {
		return 0, fmt.Errorf("command %q is missing parameter %q", cmd.Name, key)
	}
	n, ok := value.(int)
	if !ok {
		return 0, fmt.Errorf("command %q parameter %q is %T, want int", cmd.Name, key, value)
	}
	return n, nil
}

func stringParam(cmd intent.Command, key string) (string, error) {
	value, ok := cmd.Params[key]
	if !ok {
		return "", fmt.Errorf("command %q is missing parameter %q", cmd.Name, key)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("command %q parameter %q is %T, want string", cmd.Name, key, value)
	}
	return s, nil
}
