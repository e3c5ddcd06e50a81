// Package search holds the pickup and drop search fields: their text, the
// candidate list under each and the quick suggestions.
package search

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ridecab/service-ride/internal/domain/ride"
	"github.com/ridecab/service-ride/internal/platform/logger"
)

// Field identifies one of the two inputs.
type Field int

const (
	FieldNone Field = iota
	FieldPickup
	FieldDrop
)

func (f Field) String() string {
	switch f {
	case FieldPickup:
		return "pickup"
	case FieldDrop:
		return "drop"
	default:
		return ""
	}
}

var suggestions = []string{"Airport", "Railway Station", "Mall", "Hospital"}

// Suggestions returns the quick-pick place names.
func Suggestions() []string {
	return append([]string(nil), suggestions...)
}

type input struct {
	query   string
	results []ride.Location
	shown   bool
	seq     uint64
}

// FieldView is the rendered state of one input.
type FieldView struct {
	Query   string
	Results []ride.Location
}

// View is a snapshot of the search box.
type View struct {
	Pickup  FieldView
	Drop    FieldView
	Active  Field
	CanSwap bool
}

// Box is the two-field location search.
type Box struct {
	mu       sync.Mutex
	searcher Searcher
	log      *zap.Logger
	onPickup func(*ride.Location)
	onDrop   func(*ride.Location)

	pickup    input
	drop      input
	active    Field
	pickupLoc *ride.Location
	dropLoc   *ride.Location
}

// New creates a search box. onPickup and onDrop receive the chosen
// location, or nil when a field is cleared.
func New(searcher Searcher, log *zap.Logger, onPickup, onDrop func(*ride.Location)) *Box {
	return &Box{
		searcher: searcher,
		log:      logger.OrNop(log).Named("search"),
		onPickup: onPickup,
		onDrop:   onDrop,
	}
}

func (b *Box) inputLocked(f Field) *input {
	if f == FieldPickup {
		return &b.pickup
	}
	return &b.drop
}

// Focus marks a field as the active one.
func (b *Box) Focus(f Field) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = f
}

// TypePickup sets the pickup text and searches for it.
func (b *Box) TypePickup(ctx context.Context, query string) {
	b.typeInto(ctx, FieldPickup, query)
}

// TypeDrop sets the drop text and searches for it.
func (b *Box) TypeDrop(ctx context.Context, query string) {
	b.typeInto(ctx, FieldDrop, query)
}

// typeInto runs a search for the field. Results of a query that was
// replaced while the search ran are discarded.
func (b *Box) typeInto(ctx context.Context, f Field, query string) {
	b.mu.Lock()
	in := b.inputLocked(f)
	in.query = query
	in.seq++
	seq := in.seq
	b.active = f
	if query == "" {
		in.results = nil
		in.shown = false
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	results := b.lookup(ctx, query)

	b.mu.Lock()
	defer b.mu.Unlock()
	in = b.inputLocked(f)
	if in.seq != seq {
		return
	}
	in.results = results
	in.shown = true
}

// lookup never fails; search errors are logged and give no results.
func (b *Box) lookup(ctx context.Context, query string) []ride.Location {
	if b.searcher == nil {
		return nil
	}
	results, err := b.searcher.Search(ctx, query)
	if err != nil {
		b.log.Debug("search failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	return results
}

// ChoosePickup picks the i-th pickup result.
func (b *Box) ChoosePickup(i int) bool {
	return b.choose(FieldPickup, i)
}

// ChooseDrop picks the i-th drop result.
func (b *Box) ChooseDrop(i int) bool {
	return b.choose(FieldDrop, i)
}

func (b *Box) choose(f Field, i int) bool {
	b.mu.Lock()
	in := b.inputLocked(f)
	if !in.shown || i < 0 || i >= len(in.results) {
		b.mu.Unlock()
		return false
	}
	loc := in.results[i]
	in.query = loc.Name
	in.shown = false
	b.mu.Unlock()

	b.emit(f, &loc)
	return true
}

// ClearPickup empties the pickup field and unsets the pickup.
func (b *Box) ClearPickup() {
	b.clear(FieldPickup)
}

// ClearDrop empties the drop field and unsets the drop.
func (b *Box) ClearDrop() {
	b.clear(FieldDrop)
}

func (b *Box) clear(f Field) {
	b.mu.Lock()
	in := b.inputLocked(f)
	in.seq++
	*in = input{seq: in.seq}
	b.mu.Unlock()

	b.emit(f, nil)
}

// Swap exchanges pickup and drop. It needs both to be set.
func (b *Box) Swap() bool {
	b.mu.Lock()
	if b.pickupLoc == nil || b.dropLoc == nil {
		b.mu.Unlock()
		return false
	}
	pickup, drop := *b.pickupLoc, *b.dropLoc
	b.pickup.query, b.drop.query = b.drop.query, b.pickup.query
	b.mu.Unlock()

	b.emit(FieldPickup, &drop)
	b.emit(FieldDrop, &pickup)
	return true
}

// Suggest types a quick-pick place into the active field, or into the drop
// field when pickup is not active.
func (b *Box) Suggest(ctx context.Context, place string) {
	b.mu.Lock()
	f := FieldDrop
	if b.active == FieldPickup {
		f = FieldPickup
	}
	b.mu.Unlock()

	b.typeInto(ctx, f, place)
}

// HideResults closes both result lists.
func (b *Box) HideResults() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pickup.shown = false
	b.drop.shown = false
}

// Sync receives the current pickup and drop from the session. A set
// location replaces its field's text with the location name.
func (b *Box) Sync(pickup, drop *ride.Location) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pickupLoc = pickup
	b.dropLoc = drop
	if pickup != nil {
		b.pickup.query = pickup.Name
	}
	if drop != nil {
		b.drop.query = drop.Name
	}
}

// Reset empties both fields without reporting anything. Searches still
// running are discarded.
func (b *Box) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pickup = input{seq: b.pickup.seq + 1}
	b.drop = input{seq: b.drop.seq + 1}
	b.active = FieldNone
	b.pickupLoc = nil
	b.dropLoc = nil
}

// View returns a snapshot of the box. Result lists are included only while
// shown.
func (b *Box) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	return View{
		Pickup:  fieldView(b.pickup),
		Drop:    fieldView(b.drop),
		Active:  b.active,
		CanSwap: b.pickupLoc != nil && b.dropLoc != nil,
	}
}

func fieldView(in input) FieldView {
	v := FieldView{Query: in.query}
	if in.shown && len(in.results) > 0 {
		v.Results = append([]ride.Location(nil), in.results...)
	}
	return v
}

func (b *Box) emit(f Field, loc *ride.Location) {
	cb := b.onDrop
	if f == FieldPickup {
		cb = b.onPickup
	}
	if cb != nil {
		cb(loc)
	}
}
