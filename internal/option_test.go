package internal

import (
	"testing"
	"time"

	"github.com/starford/bandhub/internal/fetch"
)

func TestFetchOptions_Delay(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Scrape.Delay = 3 * time.Second

	tests := []struct {
		name string
		opts []Option
		want time.Duration
	}{
		{"config default", nil, 3 * time.Second},
		{"override", []Option{WithDelay(500 * time.Millisecond)}, 500 * time.Millisecond},
		{"explicit zero", []Option{WithDelay(0)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]Option{WithConfig(cfg), WithFetchOptions(fetch.Options{AllMissing: true})}, tt.opts...)
			app, err := newApplication(opts)
			if err != nil {
				t.Fatal(err)
			}
			got := app.fetchOptions()
			if got.Delay != tt.want {
				t.Errorf("Delay = %v, want %v", got.Delay, tt.want)
			}
			if !got.AllMissing {
				t.Error("selection options lost")
			}
		})
	}
}
