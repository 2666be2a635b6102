package sensor

import (
	"errors"

	"github.com/tomikoski/Alpakkabadge2024/internal/logic"
)

// FakeReader is a test double that returns scripted temperature readings.
type FakeReader struct {
	// Samples contains scripted readings to return. Each call to Read()
	// consumes the next sample; a sample with Err set simulates one transient
	// sensor fault.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by every Read()
	ReadError error
}

// Sample represents a single scripted reading.
type Sample struct {
	Temp logic.DeciCelsius
	Err  error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (logic.DeciCelsius, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}

	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample.Temp, sample.Err
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}
