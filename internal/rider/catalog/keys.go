package catalog

// Key is a navigation key understood by the catalog.
type Key int

const (
	KeyNone Key = iota
	KeyEnter
	KeySpace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
)

var keyNames = map[string]Key{
	"Enter":      KeyEnter,
	" ":          KeySpace,
	"Space":      KeySpace,
	"ArrowUp":    KeyUp,
	"ArrowDown":  KeyDown,
	"ArrowLeft":  KeyLeft,
	"ArrowRight": KeyRight,
	"Home":       KeyHome,
	"End":        KeyEnd,
}

// ParseKey maps a DOM key name to a Key. Unknown names give KeyNone.
func ParseKey(name string) Key {
	return keyNames[name]
}
