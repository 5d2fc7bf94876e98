package extract

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func page(start []int64, ends []int64) string {
	var b strings.Builder
	for _, s := range start {
		fmt.Fprintf(&b, `{"current_start_timestamp":%d}`, s)
	}
	for _, e := range ends {
		fmt.Fprintf(&b, `{"end_timestamp":%d}`, e)
	}
	return b.String()
}

func TestReconcileTimestamps(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantStart int64
		wantEnd   *int64
	}{
		{
			name:      "closest later end wins over one equal to start",
			source:    page([]int64{1000}, []int64{500, 1000, 1500, 2000}),
			wantStart: 1000,
			wantEnd:   ptr(1500),
		},
		{
			name:      "candidate order does not matter",
			source:    page([]int64{1000}, []int64{2000, 1500, 500}),
			wantStart: 1000,
			wantEnd:   ptr(1500),
		},
		{
			name:      "end equal to start when nothing later",
			source:    page([]int64{1000}, []int64{500, 1000}),
			wantStart: 1000,
			wantEnd:   ptr(1000),
		},
		{
			name:      "all ends before start",
			source:    page([]int64{1000}, []int64{10, 999}),
			wantStart: 1000,
			wantEnd:   nil,
		},
		{
			name:      "no end timestamps",
			source:    page([]int64{1000}, nil),
			wantStart: 1000,
			wantEnd:   nil,
		},
		{
			// Quirk kept on purpose: a zero end only survives the filter when
			// the start is zero too, and is then reported as absent.
			name:      "zero end is absent",
			source:    page([]int64{0}, []int64{0}),
			wantStart: 0,
			wantEnd:   nil,
		},
		{
			name:      "zero end candidate ignored when start is later",
			source:    page([]int64{1000}, []int64{0}),
			wantStart: 1000,
			wantEnd:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReconcileTimestamps(tt.source)
			if err != nil {
				t.Fatalf("ReconcileTimestamps() unexpected error: %v", err)
			}
			if got.Start != tt.wantStart {
				t.Errorf("Start = %d, want %d", got.Start, tt.wantStart)
			}
			switch {
			case tt.wantEnd == nil && got.End != nil:
				t.Errorf("End = %d, want nil", *got.End)
			case tt.wantEnd != nil && got.End == nil:
				t.Errorf("End = nil, want %d", *tt.wantEnd)
			case tt.wantEnd != nil && *got.End != *tt.wantEnd:
				t.Errorf("End = %d, want %d", *got.End, *tt.wantEnd)
			}
		})
	}
}

func TestReconcileTimestamps_StartCount(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "no start", source: page(nil, []int64{2000})},
		{name: "two starts", source: page([]int64{1000, 3000}, []int64{2000})},
		{name: "two identical starts", source: page([]int64{1000, 1000}, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReconcileTimestamps(tt.source)
			if !errors.Is(err, ErrStructure) {
				t.Errorf("ReconcileTimestamps() error = %v, want ErrStructure", err)
			}
		})
	}
}

func ptr(v int64) *int64 {
	return &v
}
