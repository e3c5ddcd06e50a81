// Package mapview keeps the rider's map state: live vehicles polled from the
// feed, their proximity clusters, the map center and the driver preview.
package mapview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ridecab/service-ride/internal/domain/fleet"
	"github.com/ridecab/service-ride/internal/domain/ride"
	"github.com/ridecab/service-ride/internal/platform/logger"
	"github.com/ridecab/service-ride/internal/platform/sched"
)

const (
	DefaultPollInterval = 8 * time.Second
	DefaultZoom         = 14

	// minPollInterval is the interval at or below which polling is off.
	minPollInterval = time.Second

	OfflineNotice = "Using offline car data"
)

// DefaultCenter is the map center before any pickup is chosen.
var DefaultCenter = fleet.Point{Lat: 10.7905, Lng: 78.7047}

// Config holds the map settings.
type Config struct {
	PollInterval  time.Duration
	ClusterMeters float64
	// DisableClustering shows every vehicle as its own marker.
	DisableClustering bool
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		PollInterval:  DefaultPollInterval,
		ClusterMeters: fleet.DefaultClusterMeters,
	}
}

// Marker is one rendered vehicle group.
type Marker struct {
	Vehicles []fleet.LiveVehicle
	Position fleet.Point
	Label    string
}

// View is a snapshot of the map for rendering.
type View struct {
	Center  fleet.Point
	Zoom    int
	Markers []Marker
	Pickup  *ride.Location
	Drop    *ride.Location
	Preview *fleet.LiveVehicle
	Loading bool
	Offline bool
	Notice  string
}

// Map is the rider's live map.
type Map struct {
	mu         sync.Mutex
	cfg        Config
	feed       Feed
	log        *zap.Logger
	onMapClick func(fleet.Point)

	ctx    context.Context
	cancel context.CancelFunc

	vehicles []fleet.LiveVehicle
	clusters [][]fleet.LiveVehicle
	center   fleet.Point
	pickup   *ride.Location
	drop     *ride.Location
	preview  *fleet.LiveVehicle
	offline  bool
	loading  bool
	closed   bool

	started uint64
	applied uint64
	poll    *sched.Slot
}

// New creates a map. onMapClick, when set, receives clicks on empty map.
func New(clock sched.Scheduler, feed Feed, cfg Config, log *zap.Logger, onMapClick func(fleet.Point)) *Map {
	if cfg.ClusterMeters <= 0 {
		cfg.ClusterMeters = fleet.DefaultClusterMeters
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Map{
		cfg:        cfg,
		feed:       feed,
		log:        logger.OrNop(log).Named("map"),
		onMapClick: onMapClick,
		ctx:        ctx,
		cancel:     cancel,
		center:     DefaultCenter,
		loading:    true,
		poll:       sched.NewSlot(clock),
	}
}

// Start loads the vehicles once and, when the interval is above one
// second, keeps polling until Close.
func (m *Map) Start(ctx context.Context) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.armPollLocked()
	m.mu.Unlock()

	m.Refresh(ctx)
}

func (m *Map) armPollLocked() {
	if m.cfg.PollInterval <= minPollInterval {
		return
	}
	m.poll.Arm(m.cfg.PollInterval, m.tick)
}

func (m *Map) tick(gen uint64) {
	m.mu.Lock()
	if m.closed || !m.poll.Claim(gen) {
		m.mu.Unlock()
		return
	}
	m.armPollLocked()
	m.mu.Unlock()

	m.Refresh(m.ctx)
}

// Refresh replaces the vehicle set from the feed. Any failure, an empty
// list or a malformed record shows the fallback set with the offline
// notice instead. A result that arrives after a newer one was applied is
// dropped.
func (m *Map) Refresh(ctx context.Context) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.started++
	seq := m.started
	m.loading = true
	m.mu.Unlock()

	vehicles, err := m.fetch(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || seq < m.applied {
		return
	}
	m.applied = seq
	if seq == m.started {
		m.loading = false
	}

	if err != nil {
		m.log.Warn("cars feed failed, using fallback", zap.Error(err))
		vehicles = fleet.Fallback()
	}
	m.offline = err != nil
	m.setVehiclesLocked(vehicles)
}

func (m *Map) fetch(ctx context.Context) ([]fleet.LiveVehicle, error) {
	if m.feed == nil {
		return nil, fleet.ErrEmptyFeed
	}
	records, err := m.feed.Vehicles(ctx)
	if err != nil {
		return nil, err
	}
	return fleet.Normalize(records)
}

func (m *Map) setVehiclesLocked(vehicles []fleet.LiveVehicle) {
	m.vehicles = vehicles
	if m.cfg.DisableClustering {
		m.clusters = fleet.Singletons(vehicles)
	} else {
		m.clusters = fleet.Cluster(vehicles, m.cfg.ClusterMeters)
	}

	if m.preview == nil {
		return
	}
	// keep the preview only while its vehicle is still listed
	for i := range vehicles {
		if vehicles[i].ID == m.preview.ID {
			v := vehicles[i]
			m.preview = &v
			return
		}
	}
	m.preview = nil
}

// Clusters returns the current vehicle groups.
func (m *Map) Clusters() [][]fleet.LiveVehicle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]fleet.LiveVehicle(nil), m.clusters...)
}

// ClickCluster handles a click on the marker at index i. A group recenters
// the map on its members' mean position; a single vehicle opens its driver
// preview.
func (m *Map) ClickCluster(i int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || i < 0 || i >= len(m.clusters) {
		return false
	}
	members := m.clusters[i]
	if len(members) == 1 {
		v := members[0]
		m.preview = &v
		return true
	}
	m.center = fleet.Center(members)
	return true
}

// ClosePreview hides the driver preview.
func (m *Map) ClosePreview() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preview = nil
}

// ClickMap closes the driver preview and forwards the point.
func (m *Map) ClickMap(p fleet.Point) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.preview = nil
	onMapClick := m.onMapClick
	m.mu.Unlock()

	if onMapClick != nil {
		onMapClick(p)
	}
}

// SetPickup shows the pickup marker and recenters on it when it changed.
func (m *Map) SetPickup(loc *ride.Location) {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := !sameLocation(m.pickup, loc)
	m.pickup = loc
	if changed && loc != nil && loc.Lat != 0 && loc.Lng != 0 {
		m.center = fleet.Point{Lat: loc.Lat, Lng: loc.Lng}
	}
}

// SetDrop shows the drop marker.
func (m *Map) SetDrop(loc *ride.Location) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drop = loc
}

// View returns a snapshot of the map.
func (m *Map) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{
		Center:  m.center,
		Zoom:    DefaultZoom,
		Pickup:  m.pickup,
		Drop:    m.drop,
		Loading: m.loading,
		Offline: m.offline,
		Markers: make([]Marker, 0, len(m.clusters)),
	}
	if m.offline {
		v.Notice = OfflineNotice
	}
	if m.preview != nil {
		p := *m.preview
		v.Preview = &p
	}
	for _, c := range m.clusters {
		mk := Marker{
			Vehicles: append([]fleet.LiveVehicle(nil), c...),
			Position: fleet.Center(c),
			Label:    c[0].Driver,
		}
		if len(c) > 1 {
			mk.Label = fmt.Sprintf("%d cars", len(c))
		}
		v.Markers = append(v.Markers, mk)
	}
	return v
}

// Close stops polling. In-flight fetches are canceled and their results
// dropped.
func (m *Map) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	m.poll.Disarm()
	m.cancel()
}

func sameLocation(a, b *ride.Location) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
