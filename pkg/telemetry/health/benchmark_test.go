package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func BenchmarkCheckReadiness(b *testing.B) {
	checker := New(time.Second)
	checker.RegisterCheck("destination", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("journal", func(ctx context.Context) error { return nil })
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = checker.CheckReadiness(ctx)
	}
}

func BenchmarkLivenessHandler(b *testing.B) {
	handler := New(time.Second).LivenessHandler()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler(httptest.NewRecorder(), req)
	}
}
