package models

import (
	"fmt"
	"strings"
)

// Resolution is one of the display-size labels the gallery offers.
// The backend may serve other labels as well; those are kept on the Image but never selectable.
type Resolution string

const (
	R250 Resolution = "250px"
	R500 Resolution = "500px"
	R750 Resolution = "750px"
)

// DefaultResolution is what the gallery starts with when nothing is configured.
const DefaultResolution = R500

// Resolutions lists the selectable labels in display order.
var Resolutions = []Resolution{R250, R500, R750}

func (r Resolution) String() string {
	return string(r)
}

// Next cycles through Resolutions, wrapping back to the first one.
// An unknown label goes to the first entry.
func (r Resolution) Next() Resolution {
	for i, v := range Resolutions {
		if v == r {
			return Resolutions[(i+1)%len(Resolutions)]
		}
	}
	return Resolutions[0]
}

// Prev is Next in the other direction.
func (r Resolution) Prev() Resolution {
	for i, v := range Resolutions {
		if v == r {
			return Resolutions[(i+len(Resolutions)-1)%len(Resolutions)]
		}
	}
	return Resolutions[0]
}

// Width returns the pixel width the label stands for.
func (r Resolution) Width() int {
	switch r {
	case R250:
		return 250
	case R500:
		return 500
	case R750:
		return 750
	default:
		return 0
	}
}

func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "250px", "250":
		return R250, nil
	case "500px", "500":
		return R500, nil
	case "750px", "750":
		return R750, nil
	default:
		return "", fmt.Errorf("unknown resolution: %s", s)
	}
}
