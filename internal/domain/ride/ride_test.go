package ride

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionClearsCarOnRouteChange(t *testing.T) {
	park := &Location{Name: "Park St", Lat: 10.80, Lng: 78.70}
	mall := &Location{Name: "Mall", Lat: 10.79, Lng: 78.71}
	car := &DefaultVehicleOptions()[0]

	sel := Selection{}.WithPickup(park).WithDrop(mall).WithCar(car)
	assert.True(t, sel.Complete())

	assert.Nil(t, sel.WithPickup(mall).Car)
	assert.Nil(t, sel.WithDrop(park).Car)
	assert.Nil(t, sel.WithPickup(nil).Car)
	assert.False(t, sel.WithDrop(nil).HasRoute())
}

func TestSelectionComplete(t *testing.T) {
	loc := &Location{Name: "Airport"}
	car := &VehicleOption{ID: "suv"}

	tests := []struct {
		name string
		sel  Selection
		want bool
	}{
		{"empty", Selection{}, false},
		{"pickup only", Selection{Pickup: loc}, false},
		{"route without car", Selection{Pickup: loc, Drop: loc}, false},
		{"car without drop", Selection{Pickup: loc, Car: car}, false},
		{"car without pickup", Selection{Drop: loc, Car: car}, false},
		{"complete", Selection{Pickup: loc, Drop: loc, Car: car}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sel.Complete())
		})
	}
}

func TestLocationValidate(t *testing.T) {
	assert.NoError(t, Location{Lat: 10.79, Lng: 78.70}.Validate())
	assert.Error(t, Location{Lat: 91}.Validate())
	assert.Error(t, Location{Lng: -181}.Validate())
}
