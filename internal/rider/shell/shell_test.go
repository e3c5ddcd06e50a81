package shell

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/ridecab/service-ride/internal/domain/booking"
	"github.com/ridecab/service-ride/internal/domain/fleet"
	"github.com/ridecab/service-ride/internal/domain/ride"
	"github.com/ridecab/service-ride/internal/platform/sched"
	"github.com/ridecab/service-ride/internal/rider/authclient"
	"github.com/ridecab/service-ride/internal/rider/booking"
	"github.com/ridecab/service-ride/internal/rider/catalog"
)

var (
	epoch  = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	parkSt = &ride.Location{Name: "Park St", Lat: 10.80, Lng: 78.70}
	mall   = &ride.Location{Name: "Mall", Lat: 10.79, Lng: 78.71}
)

type fakeAuth struct {
	state   authclient.State
	changes sched.Emitter[authclient.State]
}

func signedIn(name string) *fakeAuth {
	return &fakeAuth{state: authclient.State{
		User:  &authclient.User{Email: "demo@test.com", Name: name},
		Token: "tok",
	}}
}

func (a *fakeAuth) State() authclient.State { return a.state }

func (a *fakeAuth) Subscribe(fn func(authclient.State)) func() {
	return a.changes.Subscribe(fn)
}

func (a *fakeAuth) Logout() {
	a.state = authclient.State{}
	a.changes.Queue(a.state)
	a.changes.Flush()
}

type harness struct {
	shell  *Shell
	clock  *sched.Manual
	auth   *fakeAuth
	booked []bookingDomain.Record
}

func newHarness(t *testing.T, deps Deps) *harness {
	t.Helper()
	h := &harness{clock: sched.NewManual(epoch)}
	deps.Clock = h.clock
	if deps.Auth == nil {
		h.auth = signedIn("Demo User")
		deps.Auth = h.auth
	}
	if deps.Notifier == nil {
		deps.Notifier = booking.NotifierFunc(func(ctx context.Context, rec bookingDomain.Record) error {
			h.booked = append(h.booked, rec)
			return nil
		})
	}
	deps.Feed = nil
	h.shell = New(deps, DefaultConfig(), zap.NewNop())
	t.Cleanup(h.shell.Close)
	return h
}

func (h *harness) chooseRoute() {
	h.shell.SelectPickup(parkSt)
	h.shell.SelectDrop(mall)
}

func (h *harness) chooseCar(t *testing.T, id string) {
	t.Helper()
	require.True(t, h.shell.Catalog().Select(id))
	h.clock.Advance(catalog.DefaultSelectionDelay)
	require.NotNil(t, h.shell.Selection().Car)
}

func (h *harness) book(t *testing.T) {
	t.Helper()
	require.True(t, h.shell.Booking().RequestConfirmation())
	require.True(t, h.shell.Booking().Confirm())
	h.clock.Advance(booking.DefaultDelay)
}

func TestBookingEndToEnd(t *testing.T) {
	h := newHarness(t, Deps{})
	h.chooseRoute()
	h.chooseCar(t, "economy")
	assert.True(t, h.shell.CanBook())

	h.book(t)

	v := h.shell.View()
	require.NotNil(t, v.Notice)
	assert.Equal(t, NoticeSuccess, v.Notice.Kind)
	assert.Equal(t, "Ride Booked!", v.Notice.Title)
	assert.Regexp(t, `^RD-[A-Z0-9]{6}\d{3}$`, v.Notice.BookingID)
	assert.Contains(t, v.Notice.Message, "3 min")
	assert.Equal(t, bookingDomain.StatusSuccess, v.Booking.Status)

	// the car is cleared for the next ride, the route stays
	assert.Nil(t, v.Selection.Car)
	assert.Equal(t, parkSt, v.Selection.Pickup)
	assert.False(t, v.CanBook)
	assert.Empty(t, h.shell.Catalog().View().SelectedID)

	require.Len(t, h.booked, 1)
	assert.Equal(t, v.Notice.BookingID, h.booked[0].BookingID)
	assert.Equal(t, "economy", h.booked[0].Car.ID)

	h.clock.Advance(DefaultNoticeWindow)
	assert.Nil(t, h.shell.View().Notice)
	assert.Equal(t, bookingDomain.StatusSuccess, h.shell.View().Booking.Status)

	h.clock.Advance(booking.DefaultDisplayWindow - DefaultNoticeWindow)
	assert.Equal(t, bookingDomain.StatusIdle, h.shell.View().Booking.Status)
}

func TestChangingRouteClearsCar(t *testing.T) {
	tests := []struct {
		name   string
		change func(s *Shell)
	}{
		{"pickup", func(s *Shell) { s.SelectPickup(&ride.Location{Name: "Temple", Lat: 10.8156, Lng: 78.7097}) }},
		{"drop", func(s *Shell) { s.SelectDrop(&ride.Location{Name: "Market", Lat: 10.8226, Lng: 78.6947}) }},
		{"cleared pickup", func(s *Shell) { s.SelectPickup(nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Deps{})
			h.chooseRoute()
			h.chooseCar(t, "suv")

			tt.change(h.shell)
			assert.Nil(t, h.shell.Selection().Car)
			assert.False(t, h.shell.Booking().Ready())
			assert.False(t, h.shell.Booking().RequestConfirmation())
		})
	}
}

func TestRouteChangeDuringCarDelay(t *testing.T) {
	h := newHarness(t, Deps{})
	h.chooseRoute()
	require.True(t, h.shell.Catalog().Select("economy"))

	h.clock.Advance(100 * time.Millisecond)
	h.shell.SelectPickup(&ride.Location{Name: "Airport", Lat: 10.7654, Lng: 78.7097})
	h.clock.Advance(catalog.DefaultSelectionDelay)

	assert.Nil(t, h.shell.Selection().Car)
	assert.Empty(t, h.shell.Catalog().View().PendingID)
	assert.Empty(t, h.shell.Catalog().View().SelectedID)
	assert.False(t, h.shell.CanBook())
}

func TestSelectCarWithoutRouteIgnored(t *testing.T) {
	economy := ride.DefaultVehicleOptions()[0]

	h := newHarness(t, Deps{})
	h.shell.SelectCar(economy)
	assert.Nil(t, h.shell.Selection().Car)

	h.shell.SelectPickup(parkSt)
	h.shell.SelectCar(economy)
	assert.Nil(t, h.shell.Selection().Car)

	h.shell.SelectDrop(mall)
	h.shell.SelectCar(economy)
	require.NotNil(t, h.shell.Selection().Car)
	assert.Equal(t, economy.ID, h.shell.Selection().Car.ID)
}

func TestPickupRecentersMap(t *testing.T) {
	h := newHarness(t, Deps{})
	h.shell.SelectPickup(parkSt)
	assert.Equal(t, fleet.Point{Lat: 10.80, Lng: 78.70}, h.shell.Map().View().Center)
}

func TestSearchChoiceFeedsSelection(t *testing.T) {
	h := newHarness(t, Deps{Searcher: searchFunc(func(q string) []ride.Location {
		return []ride.Location{*parkSt, *mall}
	})})

	h.shell.Search().TypePickup(context.Background(), "pa")
	require.True(t, h.shell.Search().ChoosePickup(0))
	h.shell.Search().TypeDrop(context.Background(), "ma")
	require.True(t, h.shell.Search().ChooseDrop(1))

	sel := h.shell.Selection()
	assert.True(t, sel.HasRoute())
	assert.Equal(t, "Mall", sel.Drop.Name)
	assert.True(t, h.shell.Catalog().View().Enabled)

	require.True(t, h.shell.Search().Swap())
	sel = h.shell.Selection()
	assert.Equal(t, "Mall", sel.Pickup.Name)
	assert.Equal(t, "Park St", sel.Drop.Name)
}

func TestBookingFailureNotice(t *testing.T) {
	h := newHarness(t, Deps{Reserver: booking.ReserverFunc(
		func(ctx context.Context, req bookingDomain.Request) (bookingDomain.Record, error) {
			return bookingDomain.Record{}, errors.New("upstream 503")
		})})
	h.chooseRoute()
	h.chooseCar(t, "economy")
	h.book(t)

	v := h.shell.View()
	require.NotNil(t, v.Notice)
	assert.Equal(t, NoticeError, v.Notice.Kind)
	assert.Equal(t, "Booking Failed", v.Notice.Title)
	assert.Equal(t, bookingDomain.ErrorMessage, v.Notice.Message)
	assert.NotNil(t, v.Selection.Car)
	assert.Empty(t, h.booked)

	h.shell.DismissNotice()
	assert.Nil(t, h.shell.View().Notice)
}

func TestNotifierFailureKeepsBooking(t *testing.T) {
	h := newHarness(t, Deps{Notifier: booking.NotifierFunc(
		func(ctx context.Context, rec bookingDomain.Record) error {
			return errors.New("kafka unavailable")
		})})
	h.chooseRoute()
	h.chooseCar(t, "premium")
	h.book(t)

	v := h.shell.View()
	assert.Equal(t, bookingDomain.StatusSuccess, v.Booking.Status)
	assert.Equal(t, NoticeSuccess, v.Notice.Kind)
}

func TestLogoutResetsEverything(t *testing.T) {
	h := newHarness(t, Deps{})
	h.chooseRoute()
	h.chooseCar(t, "economy")
	h.book(t)
	h.shell.ToggleSidebar()

	h.shell.Logout()

	v := h.shell.View()
	assert.False(t, v.SignedIn)
	assert.Equal(t, ride.Selection{}, v.Selection)
	assert.Equal(t, bookingDomain.IdleSession(), v.Booking)
	assert.Nil(t, v.Notice)
	assert.False(t, v.Sidebar)
	assert.Equal(t, "U", v.Initials)
	assert.False(t, h.shell.Catalog().View().Enabled)
	assert.Empty(t, h.shell.Search().View().Pickup.Query)

	// selections are ignored until someone signs in again
	h.shell.SelectPickup(parkSt)
	assert.Nil(t, h.shell.Selection().Pickup)

	h.clock.Advance(time.Minute)
	assert.Equal(t, bookingDomain.StatusIdle, h.shell.View().Booking.Status)
}

func TestLogoutDuringLoading(t *testing.T) {
	h := newHarness(t, Deps{})
	h.chooseRoute()
	h.chooseCar(t, "economy")
	h.shell.Booking().RequestConfirmation()
	h.shell.Booking().Confirm()

	h.shell.Logout()
	h.clock.Advance(booking.DefaultDelay + booking.DefaultDisplayWindow)

	assert.Equal(t, bookingDomain.StatusIdle, h.shell.View().Booking.Status)
	assert.Empty(t, h.booked)
}

func TestExternalSignOutResets(t *testing.T) {
	h := newHarness(t, Deps{})
	h.chooseRoute()

	h.auth.Logout()
	assert.Equal(t, ride.Selection{}, h.shell.Selection())
}

func TestChrome(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		greeting string
		initials string
	}{
		{"full name", "demo user", "Hi, demo", "DU"},
		{"three names", "Asha Mary Rao", "Hi, Asha", "AM"},
		{"single name", "Ravi", "Hi, Ravi", "R"},
		{"blank name", "  ", "Hi, ", "U"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Deps{Auth: signedIn(tt.user)})
			assert.Equal(t, tt.greeting, h.shell.Greeting())
			assert.Equal(t, tt.initials, h.shell.Initials())
		})
	}
}

func TestSidebar(t *testing.T) {
	h := newHarness(t, Deps{})

	assert.False(t, h.shell.HandleKey("Escape"))
	h.shell.ToggleSidebar()
	assert.True(t, h.shell.View().Sidebar)
	assert.False(t, h.shell.HandleKey("Enter"))
	assert.True(t, h.shell.HandleKey("Escape"))
	assert.False(t, h.shell.View().Sidebar)

	h.shell.ToggleSidebar()
	h.shell.CloseSidebar()
	assert.False(t, h.shell.View().Sidebar)
}

func TestCloseStopsTimers(t *testing.T) {
	h := newHarness(t, Deps{})
	h.chooseRoute()
	require.True(t, h.shell.Catalog().Select("economy"))

	h.shell.Close()
	h.clock.Advance(time.Minute)
	assert.Zero(t, h.clock.Pending())
	assert.Nil(t, h.shell.Selection().Car)
}
