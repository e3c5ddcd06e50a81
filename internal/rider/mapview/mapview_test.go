package mapview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ridecab/service-ride/internal/domain/fleet"
	"github.com/ridecab/service-ride/internal/domain/ride"
	"github.com/ridecab/service-ride/internal/platform/requesting"
	"github.com/ridecab/service-ride/internal/platform/sched"
)

var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func record(id string, lat, lng float64) fleet.FeedRecord {
	return fleet.FeedRecord{ID: fleet.FlexString(id), Lat: fleet.Float(lat), Lng: fleet.Float(lng)}
}

// scriptedFeed answers each call with the next scripted result.
type scriptedFeed struct {
	results [][]fleet.FeedRecord
	errs    []error
	calls   int
}

func (f *scriptedFeed) Vehicles(ctx context.Context) ([]fleet.FeedRecord, error) {
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i], f.errs[i]
}

func live(records ...fleet.FeedRecord) *scriptedFeed {
	return &scriptedFeed{results: [][]fleet.FeedRecord{records}, errs: []error{nil}}
}

func newTestMap(t *testing.T, feed Feed, cfg Config) (*Map, *sched.Manual) {
	t.Helper()
	clock := sched.NewManual(epoch)
	m := New(clock, feed, cfg, zap.NewNop(), nil)
	t.Cleanup(m.Close)
	return m, clock
}

func vehicleIDs(v View) []string {
	var ids []string
	for _, mk := range v.Markers {
		for _, veh := range mk.Vehicles {
			ids = append(ids, veh.ID)
		}
	}
	return ids
}

func TestRefreshLiveFeed(t *testing.T) {
	m, _ := newTestMap(t, live(
		record("a", 10.790, 78.700),
		record("b", 10.791, 78.700),
		record("z", 10.800, 78.700),
	), DefaultConfig())

	m.Start(context.Background())
	v := m.View()

	assert.False(t, v.Offline)
	assert.Empty(t, v.Notice)
	assert.False(t, v.Loading)
	require.Len(t, v.Markers, 2)
	assert.Equal(t, "2 cars", v.Markers[0].Label)
	assert.Equal(t, "Driver", v.Markers[1].Label)
	assert.Equal(t, DefaultCenter, v.Center)
	assert.Equal(t, DefaultZoom, v.Zoom)
}

func TestFallbackOnFailure(t *testing.T) {
	tests := []struct {
		name string
		feed Feed
	}{
		{"error", FeedFunc(func(context.Context) ([]fleet.FeedRecord, error) {
			return nil, errors.New("HTTP 502")
		})},
		{"empty", FeedFunc(func(context.Context) ([]fleet.FeedRecord, error) {
			return []fleet.FeedRecord{}, nil
		})},
		{"malformed", FeedFunc(func(context.Context) ([]fleet.FeedRecord, error) {
			return []fleet.FeedRecord{{ID: "x", Lng: fleet.Float(78.7)}}, nil
		})},
		{"no feed", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestMap(t, tt.feed, DefaultConfig())
			m.Start(context.Background())
			v := m.View()

			assert.True(t, v.Offline)
			assert.Equal(t, OfflineNotice, v.Notice)
			assert.ElementsMatch(t, []string{"c1", "c2", "c3"}, vehicleIDs(v))
		})
	}
}

func TestPollingReplacesSet(t *testing.T) {
	feed := &scriptedFeed{
		results: [][]fleet.FeedRecord{
			{record("a", 10.79, 78.70)},
			nil,
			{record("b", 10.70, 78.70), record("c", 10.80, 78.80)},
		},
		errs: []error{nil, errors.New("timeout"), nil},
	}
	m, clock := newTestMap(t, feed, DefaultConfig())
	m.Start(context.Background())
	assert.Equal(t, []string{"a"}, vehicleIDs(m.View()))

	clock.Advance(DefaultPollInterval)
	assert.True(t, m.View().Offline)
	assert.Len(t, vehicleIDs(m.View()), 3)

	clock.Advance(DefaultPollInterval)
	v := m.View()
	assert.False(t, v.Offline)
	assert.Equal(t, []string{"b", "c"}, vehicleIDs(v))
	assert.Equal(t, 3, feed.calls)
}

func TestPollingDisabledForShortInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, 500 * time.Millisecond, time.Second} {
		feed := live(record("a", 10.79, 78.70))
		m, clock := newTestMap(t, feed, Config{PollInterval: interval})
		m.Start(context.Background())

		clock.Advance(time.Minute)
		assert.Equal(t, 1, feed.calls, "interval %s", interval)
		assert.Zero(t, clock.Pending())
	}
}

func TestCloseStopsPolling(t *testing.T) {
	feed := live(record("a", 10.79, 78.70))
	m, clock := newTestMap(t, feed, DefaultConfig())
	m.Start(context.Background())

	m.Close()
	clock.Advance(time.Minute)
	assert.Equal(t, 1, feed.calls)
	assert.Zero(t, clock.Pending())
}

func TestClickClusterRecenters(t *testing.T) {
	m, _ := newTestMap(t, live(
		record("a", 10.790, 78.700),
		record("b", 10.791, 78.700),
		record("z", 10.800, 78.700),
	), DefaultConfig())
	m.Start(context.Background())

	require.True(t, m.ClickCluster(0))
	c := m.View().Center
	assert.InDelta(t, 10.7905, c.Lat, 1e-9)
	assert.InDelta(t, 78.700, c.Lng, 1e-9)
	assert.Nil(t, m.View().Preview)

	assert.False(t, m.ClickCluster(5))
	assert.False(t, m.ClickCluster(-1))
}

func TestClickSingleOpensPreview(t *testing.T) {
	var clicked []fleet.Point
	clock := sched.NewManual(epoch)
	m := New(clock, live(record("a", 10.79, 78.70)), DefaultConfig(), zap.NewNop(), func(p fleet.Point) {
		clicked = append(clicked, p)
	})
	defer m.Close()
	m.Start(context.Background())

	require.True(t, m.ClickCluster(0))
	require.NotNil(t, m.View().Preview)
	assert.Equal(t, "a", m.View().Preview.ID)
	assert.Equal(t, DefaultCenter, m.View().Center)

	p := fleet.Point{Lat: 10.8, Lng: 78.6}
	m.ClickMap(p)
	assert.Nil(t, m.View().Preview)
	assert.Equal(t, []fleet.Point{p}, clicked)
}

func TestPreviewDroppedWhenVehicleLeaves(t *testing.T) {
	feed := &scriptedFeed{
		results: [][]fleet.FeedRecord{{record("a", 10.79, 78.70)}, {record("b", 10.79, 78.70)}},
		errs:    []error{nil, nil},
	}
	m, clock := newTestMap(t, feed, DefaultConfig())
	m.Start(context.Background())
	m.ClickCluster(0)

	clock.Advance(DefaultPollInterval)
	assert.Nil(t, m.View().Preview)
}

func TestPickupRecentersLastWriteWins(t *testing.T) {
	m, _ := newTestMap(t, live(
		record("a", 10.790, 78.700),
		record("b", 10.791, 78.700),
	), DefaultConfig())
	m.Start(context.Background())

	pickup := &ride.Location{Name: "Park St", Lat: 10.80, Lng: 78.70}
	m.SetPickup(pickup)
	assert.Equal(t, fleet.Point{Lat: 10.80, Lng: 78.70}, m.View().Center)

	m.ClickCluster(0)
	assert.InDelta(t, 10.7905, m.View().Center.Lat, 1e-9)

	// same pickup pushed again does not steal the center back
	same := *pickup
	m.SetPickup(&same)
	assert.InDelta(t, 10.7905, m.View().Center.Lat, 1e-9)

	m.SetPickup(&ride.Location{Name: "Mall", Lat: 10.79, Lng: 78.71})
	assert.Equal(t, fleet.Point{Lat: 10.79, Lng: 78.71}, m.View().Center)

	m.SetPickup(nil)
	assert.Nil(t, m.View().Pickup)
	assert.Equal(t, fleet.Point{Lat: 10.79, Lng: 78.71}, m.View().Center)
}

func TestDisableClustering(t *testing.T) {
	m, _ := newTestMap(t, live(
		record("a", 10.790, 78.700),
		record("b", 10.791, 78.700),
	), Config{DisableClustering: true})
	m.Start(context.Background())
	assert.Len(t, m.View().Markers, 2)
}

func TestHTTPFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cars", r.URL.Path)
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"car1","type":"suv","lat":10.79,"lng":78.70,"driver":"Sita"}]`))
	}))
	defer srv.Close()

	feed := NewHTTPFeed(requesting.NewClient(zap.NewNop(), time.Second), srv.URL+"/")
	records, err := feed.Vehicles(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, fleet.FlexString("car1"), records[0].ID)
	assert.Equal(t, "Sita", records[0].Driver)
}

func TestHTTPFeedErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, "oops", nil},
		{"not json", http.StatusOK, "<html>", fleet.ErrMalformedFeed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPFeed(http.DefaultClient, srv.URL).Vehicles(context.Background())
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
