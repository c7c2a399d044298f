package rules

import "fmt"

// State describes how a rules resource was loaded.
type State string

const (
	StateLoaded  State = "loaded"
	StateMissing State = "missing" // no file; identity behaviour
	StateInvalid State = "invalid" // unreadable or malformed; identity behaviour
)

// Status is the observable outcome of loading one resource.
type Status struct {
	Resource string `json:"resource"`
	Path     string `json:"path,omitempty"`
	State    State  `json:"state"`
	Err      error  `json:"-"`
}

// Degraded reports whether the resource fell back to identity behaviour.
func (s Status) Degraded() bool {
	return s.State != StateLoaded
}

// Reason returns the error text for degraded resources.
func (s Status) Reason() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

func (s Status) String() string {
	if s.Err != nil {
		return fmt.Sprintf("%s: %s (%s)", s.Resource, s.State, s.Err)
	}
	return fmt.Sprintf("%s: %s", s.Resource, s.State)
}

// Loaded pairs a rule set with the status of its resource. Value is always
// usable: degraded loads carry the empty rule set.
type Loaded[T any] struct {
	Value  T
	Status Status
}
