package contracts

// Shared rejection reasons. Stage-specific reasons are plain prose owned
// by the stage that emits them; these three are produced by the pipeline
// machinery itself and tested against literally.
const (
	ReasonInsufficientHistory = "insufficient history"
	ReasonIndicatorMissing    = "indicator unavailable"
	ReasonComputationError    = "computation error"
)

// Attributes is the append-only value map accumulated across filter
// stages within one pipeline run. Later stages and the scorer read
// values written by earlier stages; nothing is ever overwritten in
// practice because each stage namespaces its own keys.
type Attributes map[string]float64

// NewAttributes returns an empty attribute map
func NewAttributes() Attributes {
	return make(Attributes)
}

// Set records a numeric attribute
func (a Attributes) Set(name string, value float64) {
	a[name] = value
}

// SetFlag records a boolean attribute as 0 or 1
func (a Attributes) SetFlag(name string, value bool) {
	if value {
		a[name] = 1
	} else {
		a[name] = 0
	}
}

// Get returns a numeric attribute and whether it was recorded
func (a Attributes) Get(name string) (float64, bool) {
	v, ok := a[name]
	return v, ok
}

// Flag reports whether a boolean attribute was recorded as true
func (a Attributes) Flag(name string) bool {
	return a[name] == 1
}

// Merge copies every entry of other into the receiver
func (a Attributes) Merge(other Attributes) {
	for k, v := range other {
		a[k] = v
	}
}

// Clone returns an independent copy
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Verdict is the outcome of one filter stage or a whole pipeline run
// ⭐ SSOT: pass/fail travels between stages only as a Verdict
type Verdict struct {
	Passed     bool       `json:"passed"`
	Stage      string     `json:"stage,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Attributes Attributes `json:"attributes,omitempty"`
}

// Pass builds a passing verdict carrying stage attributes
func Pass(attrs Attributes) Verdict {
	return Verdict{Passed: true, Attributes: attrs}
}

// Reject builds a failing verdict tagged with the failing stage
func Reject(stage, reason string) Verdict {
	return Verdict{Passed: false, Stage: stage, Reason: reason}
}
