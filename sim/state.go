package sim

// State is the driver's lifecycle position.
type State uint8

const (
	Uninitialized State = iota
	Loaded              // mesh loaded, sources built, particles seeded
	DeviceReady         // backend initialized, initial state uploaded
	Running
	Finished
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loaded:
		return "loaded"
	case DeviceReady:
		return "device_ready"
	case Running:
		return "running"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
