package device

// HwOp is a mutation that must run on the device thread between frames,
// such as a buffer resize or upload.
type HwOp func(dev Device)

// Scheduler queues hardware operations for the device thread.
type Scheduler interface {
	// ScheduleHwOp queues op. Operations scheduled before a plan is handed to the
	// consumer run before that plan is applied.
	//
	// Parameters:
	//   - op: the operation to run on the device thread
	ScheduleHwOp(op HwOp)
}

// ImmediateScheduler runs each operation right away on Dev. Useful when producer
// and consumer share the device thread, and in tests.
type ImmediateScheduler struct {
	Dev Device
}

var _ Scheduler = ImmediateScheduler{}

func (s ImmediateScheduler) ScheduleHwOp(op HwOp) {
	op(s.Dev)
}
