package kinetic

// LinkKind tells how two bodies are connected. Both kinds propagate sleep and
// wake-up; the kind only matters to whoever produced the graph.
type LinkKind uint8

const (
	LinkContact LinkKind = iota
	LinkJoint
)

func (k LinkKind) String() string {
	switch k {
	case LinkContact:
		return "contact"
	case LinkJoint:
		return "joint"
	default:
		return "unknown"
	}
}

// Link connects two bodies for the duration of one step.
type Link struct {
	A, B BodyHandle
	Kind LinkKind
}

// Graph is the connectivity produced by the collision and joint systems for
// the coming step. Links to static bodies are ignored.
type Graph []Link
