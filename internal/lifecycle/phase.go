// internal/lifecycle/phase.go
//
// Lifecycle phases, in the only order they can occur.  The numeric value
// is also exported as the formapi_lifecycle_phase gauge.
package lifecycle

// Phase is a step of the process lifecycle.  Phases only move forward.
type Phase int32

const (
	Uninitialized Phase = iota
	ConfigBuilt
	ResourcesReady
	Serving
	Draining
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case ConfigBuilt:
		return "config_built"
	case ResourcesReady:
		return "resources_ready"
	case Serving:
		return "serving"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}
