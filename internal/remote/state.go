package remote

// State is the connectivity status of one integration target. It is updated
// only from health probe outcomes; a disabled gate pins it to StateDisabled.
type State int

const (
	StateDisabled State = iota
	StateConnected
	StateUnreachable
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateConnected:
		return "connected"
	case StateUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// MarshalText makes State render as its name in JSON health payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
