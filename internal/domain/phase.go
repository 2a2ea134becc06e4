package domain

// Phase is one stage of the gated planning workflow. Phases advance in a
// fixed order and each phase owns specific document sections.
type Phase string

const (
	PhaseSkeleton      Phase = "skeleton"
	PhaseAnalysis      Phase = "analysis"
	PhaseTestSpec      Phase = "test_specification"
	PhaseImplSpec      Phase = "implementation_specification"
	PhaseDocSpec       Phase = "documentation_specification"
	PhaseChangelog     Phase = "changelog_specification"
	PhaseVerification  Phase = "readiness_verification"
	PhaseRealized      Phase = "realized"
)

// PhaseOrder lists every phase in required progression order.
var PhaseOrder = []Phase{
	PhaseSkeleton,
	PhaseAnalysis,
	PhaseTestSpec,
	PhaseImplSpec,
	PhaseDocSpec,
	PhaseChangelog,
	PhaseVerification,
	PhaseRealized,
}

var phaseIndex = func() map[Phase]int {
	m := make(map[Phase]int, len(PhaseOrder))
	for i, p := range PhaseOrder {
		m[p] = i
	}
	return m
}()

// Valid reports whether p names a known phase.
func (p Phase) Valid() bool {
	_, ok := phaseIndex[p]
	return ok
}

// Index returns p's position in the progression order, or -1 if unknown.
func (p Phase) Index() int {
	i, ok := phaseIndex[p]
	if !ok {
		return -1
	}
	return i
}

// Next returns the immediate successor phase. The terminal phase has no
// successor and returns ok=false.
func (p Phase) Next() (Phase, bool) {
	i := p.Index()
	if i < 0 || i == len(PhaseOrder)-1 {
		return "", false
	}
	return PhaseOrder[i+1], true
}

// Before reports whether p precedes other in the progression order.
func (p Phase) Before(other Phase) bool {
	return p.Index() >= 0 && other.Index() >= 0 && p.Index() < other.Index()
}

// ParsePhase returns the Phase for s, or ok=false for unknown names.
func ParsePhase(s string) (Phase, bool) {
	p := Phase(s)
	return p, p.Valid()
}
