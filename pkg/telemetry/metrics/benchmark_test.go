package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func Benchmark_Collector_RecordRequest(b *testing.B) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordRequest("GET", 200, time.Millisecond)
	}
}

func Benchmark_Collector_RecordRequest_Parallel(b *testing.B) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			collector.RecordRequest("POST", 201, time.Millisecond)
		}
	})
}

func Benchmark_Collector_Forward(b *testing.B) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.ForwardStarted()
		collector.RecordForward(5 * time.Millisecond)
		collector.ForwardDone()
	}
}

func Benchmark_CardinalityLimiter_Allow(b *testing.B) {
	limiter := NewCardinalityLimiter(32)
	limiter.Allow("PROPFIND")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Allow("PROPFIND")
	}
}
