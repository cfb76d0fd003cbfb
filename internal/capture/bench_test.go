package capture

import (
	"testing"

	"radiocon/internal/radio"
)

// BenchmarkClassify measures the per-frame cost on the delivery path.
func BenchmarkClassify(b *testing.B) {
	c := New()
	c.Activate()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Classify(radio.FrameData)
	}
}

// BenchmarkClassify_Inactive measures the discard path.
func BenchmarkClassify_Inactive(b *testing.B) {
	c := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Classify(radio.FrameData)
	}
}

// BenchmarkSnapshot measures the foreground read.
func BenchmarkSnapshot(b *testing.B) {
	c := New()
	c.Activate()
	c.Classify(radio.FrameManagement)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Snapshot()
	}
}
