package protocol

import (
	"fmt"
	"strconv"
)

// StatusSample is one telemetry reading from a running test.
type StatusSample struct {
	// MA is the reported current in milliamps.
	MA float64

	// MV is the reported voltage in millivolts.
	MV float64

	// Elapsed is seconds since the test started, converted from the
	// device's millisecond TIME field.
	Elapsed float64
}

// StatusFromMessage extracts and converts a telemetry sample from a STATUS
// message.
//
// Returns a *FieldError if TIME, MV, or MA is missing or non-numeric. The
// error distinguishes the missing case from the invalid one.
func StatusFromMessage(m DeviceMessage) (StatusSample, error) {
	if m.Name != MsgStatus {
		return StatusSample{}, fmt.Errorf("expected a %s message, got %q", MsgStatus, m.Name)
	}

	ma, err := floatField(m, KeyMA)
	if err != nil {
		return StatusSample{}, err
	}
	mv, err := floatField(m, KeyMV)
	if err != nil {
		return StatusSample{}, err
	}
	ms, err := floatField(m, KeyTime)
	if err != nil {
		return StatusSample{}, err
	}

	return StatusSample{MA: ma, MV: mv, Elapsed: ms / 1000.0}, nil
}

func floatField(m DeviceMessage, key string) (float64, error) {
	value, ok := m.Get(key)
	if !ok {
		return 0, &FieldError{Message: m.Name, Key: key}
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &FieldError{Message: m.Name, Key: key, Value: value, Invalid: true}
	}
	return f, nil
}

func (s StatusSample) String() string {
	return fmt.Sprintf("%.0fms: %.2fmA %.2fmV", s.Elapsed*1000, s.MA, s.MV)
}
