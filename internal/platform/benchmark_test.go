package platform

import (
	"context"
	"testing"
)

func BenchmarkDetect(b *testing.B) {
	detector := NewDetector()
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = detector.Detect(ctx)
	}
}

func BenchmarkNormalizeArch(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = normalizeArch("x86_64")
	}
}

func BenchmarkNormalizeOS(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = normalizeOS("illumos")
	}
}
