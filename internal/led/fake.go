package led

// FakeDriver records written frames for test assertions.
type FakeDriver struct {
	// Frames contains every frame written, in order.
	Frames []Frame

	// WriteError, if set, will be returned by WriteFrame.
	WriteError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDriver creates a FakeDriver for testing.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// WriteFrame records the frame.
func (f *FakeDriver) WriteFrame(frame Frame) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Frames = append(f.Frames, frame)
	return nil
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recently written frame, or the zero frame if none.
func (f *FakeDriver) Last() Frame {
	if len(f.Frames) == 0 {
		return Frame{}
	}
	return f.Frames[len(f.Frames)-1]
}

// Reset clears recorded frames.
func (f *FakeDriver) Reset() {
	f.Frames = nil
	f.WriteError = nil
	f.Closed = false
}
