// Package ride holds the inputs a rider assembles before booking: the two
// route endpoints and the chosen vehicle option.
package ride

import "fmt"

// Location is a named geocoordinate returned by location search.
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// String returns the location name.
func (l Location) String() string { return l.Name }

// Validate checks that the coordinate is on the globe.
func (l Location) Validate() error {
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("latitude out of range: %v", l.Lat)
	}
	if l.Lng < -180 || l.Lng > 180 {
		return fmt.Errorf("longitude out of range: %v", l.Lng)
	}
	return nil
}

// VehicleOption is one entry of the car catalog. Price and ETA are display
// strings priced for the current route.
type VehicleOption struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	ETA         string   `json:"eta"`
	Seats       int      `json:"seats"`
	Rating      float64  `json:"rating"`
	Features    []string `json:"features"`
	Icon        string   `json:"icon"`
}

// DefaultVehicleOptions returns the built-in catalog.
func DefaultVehicleOptions() []VehicleOption {
	return []VehicleOption{
		{
			ID:          "economy",
			Name:        "RideEco",
			Description: "Affordable rides",
			Price:       "₹180",
			ETA:         "3 min",
			Seats:       4,
			Rating:      4.8,
			Features:    []string{"AC", "Music"},
			Icon:        "🚗",
		},
		{
			ID:          "premium",
			Name:        "RidePremium",
			Description: "Comfortable & stylish",
			Price:       "₹240",
			ETA:         "2 min",
			Seats:       4,
			Rating:      4.9,
			Features:    []string{"AC", "Music", "WiFi"},
			Icon:        "🚙",
		},
		{
			ID:          "suv",
			Name:        "RideSUV",
			Description: "Spacious for groups",
			Price:       "₹320",
			ETA:         "5 min",
			Seats:       6,
			Rating:      4.7,
			Features:    []string{"AC", "Music", "Extra Space"},
			Icon:        "🚐",
		},
	}
}

// Selection is the (pickup, drop, car) triple. A car is only meaningful for
// the route it was priced on, so replacing either endpoint drops it.
type Selection struct {
	Pickup *Location
	Drop   *Location
	Car    *VehicleOption
}

// HasRoute reports whether both endpoints are set.
func (s Selection) HasRoute() bool {
	return s.Pickup != nil && s.Drop != nil
}

// Complete reports whether a booking may be attempted.
func (s Selection) Complete() bool {
	return s.HasRoute() && s.Car != nil
}

// WithPickup returns the selection with a new pickup and no car.
func (s Selection) WithPickup(loc *Location) Selection {
	s.Pickup = loc
	s.Car = nil
	return s
}

// WithDrop returns the selection with a new drop and no car.
func (s Selection) WithDrop(loc *Location) Selection {
	s.Drop = loc
	s.Car = nil
	return s
}

// WithCar returns the selection with the given car.
func (s Selection) WithCar(car *VehicleOption) Selection {
	s.Car = car
	return s
}
