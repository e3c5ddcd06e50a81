// Package shell composes the rider session: it owns the selected route and
// car, feeds them to the search, catalog, map and booking components and
// turns booking outcomes into short-lived notices.
package shell

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	bookingDomain "github.com/ridecab/service-ride/internal/domain/booking"
	"github.com/ridecab/service-ride/internal/domain/fleet"
	"github.com/ridecab/service-ride/internal/domain/ride"
	"github.com/ridecab/service-ride/internal/platform/logger"
	"github.com/ridecab/service-ride/internal/platform/sched"
	"github.com/ridecab/service-ride/internal/rider/authclient"
	"github.com/ridecab/service-ride/internal/rider/booking"
	"github.com/ridecab/service-ride/internal/rider/catalog"
	"github.com/ridecab/service-ride/internal/rider/mapview"
	"github.com/ridecab/service-ride/internal/rider/search"
)

// DefaultNoticeWindow is how long a booking notice stays up.
const DefaultNoticeWindow = 4200 * time.Millisecond

// Authenticator is the identity source of the session.
type Authenticator interface {
	State() authclient.State
	Subscribe(fn func(authclient.State)) (cancel func())
	Logout()
}

// NoticeKind tells success and failure notices apart.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient booking notification.
type Notice struct {
	Kind      NoticeKind
	Title     string
	BookingID string
	Message   string
}

// Deps are the collaborators of a Shell.
type Deps struct {
	Clock    sched.Scheduler
	Auth     Authenticator
	Searcher search.Searcher
	Feed     mapview.Feed
	// Reserver replaces the simulated booking step when set.
	Reserver booking.Reserver
	// Notifier receives every committed booking.
	Notifier booking.Notifier
}

// Config holds the timings of the session and its components.
type Config struct {
	NoticeWindow   time.Duration
	SelectionDelay time.Duration
	Booking        booking.Config
	Map            mapview.Config
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		NoticeWindow:   DefaultNoticeWindow,
		SelectionDelay: catalog.DefaultSelectionDelay,
		Booking:        booking.DefaultConfig(),
		Map:            mapview.DefaultConfig(),
	}
}

// View is a snapshot of the session chrome.
type View struct {
	SignedIn    bool
	AuthLoading bool
	Greeting    string
	Initials    string
	Sidebar     bool
	Notice      *Notice
	Selection   ride.Selection
	Booking     bookingDomain.Session
	CanBook     bool
}

// Shell is one rider session.
type Shell struct {
	mu       sync.Mutex
	log      *zap.Logger
	cfg      Config
	auth     Authenticator
	notifier booking.Notifier

	search  *search.Box
	catalog *catalog.Catalog
	mapView *mapview.Map
	flow    *booking.Flow

	identity   authclient.State
	sel        ride.Selection
	sidebar    bool
	notice     *Notice
	noticeSlot *sched.Slot
	closed     bool

	cancelAuth func()
}

// New wires a session and its components.
func New(deps Deps, cfg Config, log *zap.Logger) *Shell {
	log = logger.OrNop(log)
	if cfg.NoticeWindow <= 0 {
		cfg.NoticeWindow = DefaultNoticeWindow
	}

	s := &Shell{
		log:        log.Named("shell"),
		cfg:        cfg,
		auth:       deps.Auth,
		notifier:   deps.Notifier,
		noticeSlot: sched.NewSlot(deps.Clock),
	}

	s.search = search.New(deps.Searcher, log, s.SelectPickup, s.SelectDrop)
	s.catalog = catalog.New(deps.Clock, log, s.SelectCar, catalog.WithSelectionDelay(cfg.SelectionDelay))
	s.mapView = mapview.New(deps.Clock, deps.Feed, cfg.Map, log, s.mapClicked)

	opts := []booking.Option{
		booking.WithConfig(cfg.Booking),
		booking.WithNotifier(booking.NotifierFunc(s.rideBooked)),
	}
	if deps.Reserver != nil {
		opts = append(opts, booking.WithReserver(deps.Reserver))
	}
	s.flow = booking.New(deps.Clock, log, opts...)
	s.flow.OnChange(s.bookingChanged)

	if s.auth != nil {
		s.identity = s.auth.State()
		s.cancelAuth = s.auth.Subscribe(s.authChanged)
	}
	return s
}

// Search returns the location search component.
func (s *Shell) Search() *search.Box { return s.search }

// Catalog returns the car type list.
func (s *Shell) Catalog() *catalog.Catalog { return s.catalog }

// Map returns the live map.
func (s *Shell) Map() *mapview.Map { return s.mapView }

// Booking returns the booking flow.
func (s *Shell) Booking() *booking.Flow { return s.flow }

// Start loads the map and begins polling the vehicle feed.
func (s *Shell) Start(ctx context.Context) {
	s.mapView.Start(ctx)
}

// Selection returns the current route and car.
func (s *Shell) Selection() ride.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// SelectPickup sets or clears the pickup. Any chosen car is dropped.
func (s *Shell) SelectPickup(loc *ride.Location) {
	s.update(func(sel ride.Selection) ride.Selection { return sel.WithPickup(loc) })
}

// SelectDrop sets or clears the drop. Any chosen car is dropped.
func (s *Shell) SelectDrop(loc *ride.Location) {
	s.update(func(sel ride.Selection) ride.Selection { return sel.WithDrop(loc) })
}

// SelectCar chooses the vehicle for the current route. It is ignored until
// both pickup and drop are set.
func (s *Shell) SelectCar(opt ride.VehicleOption) {
	s.update(func(sel ride.Selection) ride.Selection {
		if !sel.HasRoute() {
			return sel
		}
		return sel.WithCar(&opt)
	})
}

func (s *Shell) update(fn func(ride.Selection) ride.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.identity.SignedIn() {
		return
	}
	s.sel = fn(s.sel)
	s.pushLocked()
}

// pushLocked hands the selection to every component. None of them calls
// back into the shell from these setters.
func (s *Shell) pushLocked() {
	sel := s.sel
	s.search.Sync(sel.Pickup, sel.Drop)
	s.catalog.SetRoute(sel.Pickup, sel.Drop)
	s.catalog.SyncSelected(sel.Car)
	s.mapView.SetPickup(sel.Pickup)
	s.mapView.SetDrop(sel.Drop)
	s.flow.SetSelection(sel)
}

// CanBook reports whether a booking may be started now.
func (s *Shell) CanBook() bool {
	return s.flow.Ready() && s.flow.Session().Status != bookingDomain.StatusLoading
}

func (s *Shell) bookingChanged(session bookingDomain.Session) {
	var n *Notice
	switch session.Status {
	case bookingDomain.StatusSuccess:
		n = &Notice{
			Kind:      NoticeSuccess,
			Title:     "Ride Booked!",
			BookingID: session.BookingID,
			Message:   session.Message,
		}
	case bookingDomain.StatusError:
		n = &Notice{Kind: NoticeError, Title: "Booking Failed", Message: session.Message}
	default:
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.notice = n
	s.noticeSlot.Arm(s.cfg.NoticeWindow, s.expireNotice)
}

func (s *Shell) expireNotice(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.noticeSlot.Claim(gen) {
		return
	}
	s.notice = nil
}

// DismissNotice hides the current notice.
func (s *Shell) DismissNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noticeSlot.Disarm()
	s.notice = nil
}

// rideBooked runs once a booking is committed: the car is cleared for the
// next ride and the record goes to the external notifier.
func (s *Shell) rideBooked(ctx context.Context, rec bookingDomain.Record) error {
	s.mu.Lock()
	if !s.closed {
		s.sel = s.sel.WithCar(nil)
		s.pushLocked()
	}
	s.mu.Unlock()

	s.log.Info("ride booked",
		zap.String("booking_id", rec.BookingID),
		zap.String("pickup", rec.Pickup.Name),
		zap.String("drop", rec.Drop.Name),
		zap.String("vehicle", rec.Car.ID))

	if s.notifier == nil {
		return nil
	}
	return s.notifier.RideBooked(ctx, rec)
}

func (s *Shell) mapClicked(p fleet.Point) {
	s.log.Debug("map clicked", zap.Float64("lat", p.Lat), zap.Float64("lng", p.Lng))
}

func (s *Shell) authChanged(st authclient.State) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	wasSignedIn := s.identity.SignedIn()
	s.identity = st
	s.mu.Unlock()

	if wasSignedIn && !st.SignedIn() {
		s.resetRide()
	}
}

// Logout signs the rider out and discards the ride being built.
func (s *Shell) Logout() {
	if s.auth != nil {
		s.auth.Logout()
	}
	s.resetRide()
}

func (s *Shell) resetRide() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.sel = ride.Selection{}
	s.sidebar = false
	s.noticeSlot.Disarm()
	s.notice = nil
	s.pushLocked()
	s.mu.Unlock()

	s.search.Reset()
	s.flow.Reset()
}

// ToggleSidebar opens or closes the sidebar.
func (s *Shell) ToggleSidebar() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sidebar = !s.sidebar
}

// CloseSidebar closes the sidebar.
func (s *Shell) CloseSidebar() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sidebar = false
}

// HandleKey handles a global key press. Escape closes an open sidebar.
func (s *Shell) HandleKey(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key == "Escape" && s.sidebar {
		s.sidebar = false
		return true
	}
	return false
}

// Greeting is the header greeting with the rider's first name.
func (s *Shell) Greeting() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return greeting(s.identity.User)
}

// Initials are the avatar letters of the rider.
func (s *Shell) Initials() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return initials(s.identity.User)
}

func greeting(u *authclient.User) string {
	if u == nil {
		return ""
	}
	first, _, _ := strings.Cut(strings.TrimSpace(u.Name), " ")
	return "Hi, " + first
}

func initials(u *authclient.User) string {
	if u == nil {
		return "U"
	}
	var out []rune
	for _, part := range strings.Fields(u.Name) {
		out = append(out, unicode.ToUpper([]rune(part)[0]))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "U"
	}
	return string(out)
}

// View returns a snapshot of the session.
func (s *Shell) View() View {
	session := s.flow.Session()
	canBook := s.CanBook()

	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		SignedIn:    s.identity.SignedIn(),
		AuthLoading: s.identity.Loading,
		Greeting:    greeting(s.identity.User),
		Initials:    initials(s.identity.User),
		Sidebar:     s.sidebar,
		Selection:   s.sel,
		Booking:     session,
		CanBook:     canBook,
	}
	if s.notice != nil {
		n := *s.notice
		v.Notice = &n
	}
	return v
}

// Close tears the session down and stops every timer.
func (s *Shell) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.noticeSlot.Disarm()
	cancelAuth := s.cancelAuth
	s.mu.Unlock()

	if cancelAuth != nil {
		cancelAuth()
	}
	s.flow.Close()
	s.catalog.Close()
	s.mapView.Close()
}
