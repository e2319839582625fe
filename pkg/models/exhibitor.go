package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Hall identifies an exhibition hall. Halls are usually numbered but the
// fairground also has named areas ("Galeria"), so a hall is either a
// number or a label. Numbered halls order before labeled ones.
type Hall struct {
	Num     int
	Label   string
	Numeric bool
}

// ParseHall interprets a raw hall value. Numeric strings become numbered
// halls, anything else is kept verbatim as a label.
func ParseHall(raw string) Hall {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return Hall{Num: n, Numeric: true}
	}
	return Hall{Label: raw}
}

// Less orders halls: numbered halls ascending, then labels lexicographic.
func (h Hall) Less(other Hall) bool {
	if h.Numeric != other.Numeric {
		return h.Numeric
	}
	if h.Numeric {
		return h.Num < other.Num
	}
	return h.Label < other.Label
}

func (h Hall) String() string {
	if h.Numeric {
		return strconv.Itoa(h.Num)
	}
	return h.Label
}

// MarshalJSON writes numbered halls as JSON numbers and labels as strings,
// mirroring the upstream data.
func (h Hall) MarshalJSON() ([]byte, error) {
	if h.Numeric {
		return json.Marshal(h.Num)
	}
	return json.Marshal(h.Label)
}

// UnmarshalJSON accepts either encoding.
func (h *Hall) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*h = Hall{Num: n, Numeric: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("hall must be a number or a string: %w", err)
	}
	*h = ParseHall(s)
	return nil
}

// Exhibitor is a single booth location of an Essen Spiel exhibitor.
// Exhibitors with several booths appear once per location, sharing the
// same ID, with IsMultiLocation set.
type Exhibitor struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Hall            Hall           `json:"hall"`
	Booth           string         `json:"booth"`
	Country         string         `json:"country,omitempty"`
	Website         string         `json:"website,omitempty"`
	Email           string         `json:"email,omitempty"`
	Info            string         `json:"info,omitempty"`
	IsMultiLocation bool           `json:"is_multi_location,omitempty"`
	Extra           map[string]any `json:"extra,omitempty"`
}

// Location renders "Hall X, Booth Y" for logs and reports.
func (e *Exhibitor) Location() string {
	return fmt.Sprintf("Hall %s, Booth %s", e.Hall, e.Booth)
}
