package optimize

// Level is a response-shaping verbosity tier. Higher levels drop more.
type Level int

const (
	// Standard keeps full context: descriptions, timestamps, creator and
	// collection detail, analytics counters.
	Standard Level = iota

	// Aggressive drops timestamps and analytics and compacts creator and
	// collection to id and name.
	Aggressive

	// UltraMinimal keeps only identifiers, types, and relationship fields.
	UltraMinimal
)

// Batch size thresholds for level selection.
const (
	AggressiveThreshold   = 10
	UltraMinimalThreshold = 25
)

// LevelFor returns the level for a batch of n items.
func LevelFor(n int) Level {
	switch {
	case n >= UltraMinimalThreshold:
		return UltraMinimal
	case n >= AggressiveThreshold:
		return Aggressive
	default:
		return Standard
	}
}

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case Standard:
		return "STANDARD"
	case Aggressive:
		return "AGGRESSIVE"
	case UltraMinimal:
		return "ULTRA_MINIMAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}
