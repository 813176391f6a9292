package types

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// NodeInfo is an immutable snapshot of a peer's state as observed by the
// mesh. Callers never receive the mesh's own mutable record.
type NodeInfo struct {
	Endpoint  string
	Height    Height
	Latency   time.Duration
	UserAgent string
	Active    bool
	Pending   int
}

func (n NodeInfo) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("endpoint", n.Endpoint)
	enc.AddUint32("height", n.Height.Uint32())
	enc.AddDuration("latency", n.Latency)
	enc.AddString("user_agent", n.UserAgent)
	enc.AddBool("active", n.Active)
	enc.AddInt("pending", n.Pending)
	return nil
}
