// Package fleet models the live vehicles shown around the rider and the
// client-side proximity clustering applied before they are drawn.
package fleet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Vehicle types with a dedicated marker color.
const (
	TypeEconomy = "economy"
	TypePremium = "premium"
	TypeSUV     = "suv"
)

const defaultDriver = "Driver"

var (
	// ErrEmptyFeed is returned when the feed answers with no vehicles.
	ErrEmptyFeed = errors.New("no-cars")
	// ErrMalformedFeed is returned when a feed record has no usable position.
	ErrMalformedFeed = errors.New("malformed vehicle record")
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LiveVehicle is a vehicle position from the last feed refresh.
type LiveVehicle struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Lat    float64        `json:"lat"`
	Lng    float64        `json:"lng"`
	Driver string         `json:"driver"`
	Color  string         `json:"color"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// Position returns the vehicle coordinate.
func (v LiveVehicle) Position() Point {
	return Point{Lat: v.Lat, Lng: v.Lng}
}

// ColorFor returns the marker color for a vehicle type.
func ColorFor(vehicleType string) string {
	switch vehicleType {
	case TypePremium:
		return "#F59E0B"
	case TypeSUV:
		return "#EF4444"
	default:
		return "#8B5CF6"
	}
}

// Fallback returns the static vehicle set shown when the feed is unavailable.
func Fallback() []LiveVehicle {
	return []LiveVehicle{
		{ID: "c1", Type: TypeEconomy, Lat: 10.792, Lng: 78.703, Driver: "Anu", Color: "#8B5CF6"},
		{ID: "c2", Type: TypePremium, Lat: 10.791, Lng: 78.706, Driver: "Ravi", Color: "#F59E0B"},
		{ID: "c3", Type: TypeSUV, Lat: 10.789, Lng: 78.705, Driver: "Sita", Color: "#EF4444"},
	}
}

// FeedRecord is one entry of the vehicle feed as sent over the wire. Every
// field except the coordinate may be missing.
type FeedRecord struct {
	ID     FlexString     `json:"id,omitempty"`
	Type   string         `json:"type,omitempty"`
	Lat    FlexFloat      `json:"lat"`
	Lng    FlexFloat      `json:"lng"`
	Driver string         `json:"driver,omitempty"`
	Name   string         `json:"name,omitempty"`
	Color  string         `json:"color,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// Normalize fills defaults for missing fields. An empty feed and a record
// without a usable coordinate are both treated as feed failures.
func Normalize(records []FeedRecord) ([]LiveVehicle, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFeed
	}

	out := make([]LiveVehicle, 0, len(records))
	for i, r := range records {
		if !r.Lat.Valid || !r.Lng.Valid {
			return nil, fmt.Errorf("%w: record %d", ErrMalformedFeed, i)
		}

		v := LiveVehicle{
			ID:     string(r.ID),
			Type:   r.Type,
			Lat:    r.Lat.Value,
			Lng:    r.Lng.Value,
			Driver: r.Driver,
			Color:  r.Color,
			Meta:   r.Meta,
		}
		if v.ID == "" {
			v.ID = fmt.Sprintf("car_%d", i)
		}
		if v.Type == "" {
			v.Type = TypeEconomy
		}
		if v.Driver == "" {
			v.Driver = r.Name
		}
		if v.Driver == "" {
			v.Driver = defaultDriver
		}
		if v.Color == "" {
			v.Color = ColorFor(r.Type)
		}
		if v.Meta == nil {
			v.Meta = map[string]any{}
		}
		out = append(out, v)
	}
	return out, nil
}

// FlexString accepts a JSON string or number.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*s = FlexString(n.String())
	return nil
}

// FlexFloat accepts a JSON number or a numeric string. Valid is false for
// null, missing and non-numeric values.
type FlexFloat struct {
	Value float64
	Valid bool
}

// Float returns a valid FlexFloat.
func Float(v float64) FlexFloat { return FlexFloat{Value: v, Valid: true} }

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = FlexFloat{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*f = FlexFloat{Value: v, Valid: true}
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
