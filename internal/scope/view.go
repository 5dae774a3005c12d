package scope

import (
	"fmt"
	"strings"
)

// View selects which plot a frame carries.
type View int

const (
	TimeDomain View = iota
	Constellation
	PowerSpectrum
)

func (v View) String() string {
	switch v {
	case TimeDomain:
		return "time"
	case Constellation:
		return "constellation"
	case PowerSpectrum:
		return "spectrum"
	default:
		return fmt.Sprintf("View(%d)", int(v))
	}
}

// ParseView accepts the view name or its short alias.
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "time", "time-domain", "":
		return TimeDomain, nil
	case "constellation", "iq":
		return Constellation, nil
	case "spectrum", "psd", "power-spectrum":
		return PowerSpectrum, nil
	}
	return TimeDomain, fmt.Errorf("unknown view %q", s)
}

func (v View) MarshalText() ([]byte, error) {
	if v < TimeDomain || v > PowerSpectrum {
		return nil, fmt.Errorf("unknown view %d", int(v))
	}
	return []byte(v.String()), nil
}

func (v *View) UnmarshalText(b []byte) error {
	parsed, err := ParseView(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
