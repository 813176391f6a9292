package syncer

// State is the syncer's process-wide synchronization state.
type State uint32

const (
	// StateIdle is the state before Start is called.
	StateIdle State = iota
	// StateInitializing lasts until the mesh signals readiness and the
	// store reports its current contents.
	StateInitializing
	// StateCatchingUp is the steady state while the write pointer trails
	// the mesh's highest known height or reconciliation found work.
	StateCatchingUp
	// StateUpToDate is entered when the write pointer reaches the mesh
	// height and the last reconciliation pass found nothing missing or
	// excessive. Any new block announced by the mesh moves the syncer
	// back to StateCatchingUp.
	StateUpToDate
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateCatchingUp:
		return "catchingUp"
	case StateUpToDate:
		return "upToDate"
	default:
		return "unknown"
	}
}
