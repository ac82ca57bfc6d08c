package flight

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrBoundOutOfRange is returned when an altitude limit is outside
	// [MinBound, MaxBound].
	ErrBoundOutOfRange = errors.New("altitude limit out of range")
	// ErrBoundNotNumeric is returned when altitude limit input is not an
	// integer.
	ErrBoundNotNumeric = errors.New("altitude limit is not a number")
)

// BoundRangeMessage is shown to the operator when a limit is rejected.
var BoundRangeMessage = fmt.Sprintf("Enter a value between %d and %d.", MinBound, MaxBound)

// BoundResult is the outcome of an altitude limit change.
type BoundResult struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
	Bound    int    `json:"bound"`
}

// ValidateBound checks v against the allowed altitude limit range.
func ValidateBound(v int) error {
	if v < MinBound || v > MaxBound {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrBoundOutOfRange, v, MinBound, MaxBound)
	}
	return nil
}

// ParseBound parses operator text input into a validated altitude limit.
func ParseBound(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBoundNotNumeric, s)
	}
	if err := ValidateBound(v); err != nil {
		return 0, err
	}
	return v, nil
}

func acceptedMessage(v int) string {
	return fmt.Sprintf("Altitude limit set to %dpx.", v)
}
