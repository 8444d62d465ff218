package briefing

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"time"
)

// #region mock

// MockProvider synthesizes silent audio for development and dry-run
// sessions. Duration scales with text length so playback UIs behave.
type MockProvider struct {
	SampleRate int
}

// NewMockProvider returns a mock provider at the default sample rate.
func NewMockProvider() MockProvider {
	return MockProvider{SampleRate: 16000}
}

// Name returns the provider identifier.
func (m MockProvider) Name() string {
	return "mock"
}

// Synthesize generates a silent WAV payload sized to the input text.
func (m MockProvider) Synthesize(_ context.Context, text string) ([]byte, error) {
	rate := m.SampleRate
	if rate <= 0 {
		rate = 16000
	}
	return silentWAV(estimateDuration(text), rate), nil
}

func estimateDuration(text string) time.Duration {
	if len(text) == 0 {
		return 2 * time.Second
	}
	seconds := float64(len([]rune(text))) / 12.0
	seconds = math.Max(seconds, 2)
	return time.Duration(seconds * float64(time.Second))
}

func silentWAV(duration time.Duration, sampleRate int) []byte {
	totalSamples := int(math.Ceil(duration.Seconds() * float64(sampleRate)))
	if totalSamples < sampleRate {
		totalSamples = sampleRate
	}
	dataSize := totalSamples * 2
	buf := bytes.NewBuffer(make([]byte, 0, 44+dataSize))
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(buf, binary.LittleEndian, uint16(2))
	binary.Write(buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

// #endregion mock
