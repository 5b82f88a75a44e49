package listview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		name             string
		w                Window
		hasPrev, hasNext bool
		prev, next       int
		label            string
	}{
		{"first of many", Window{1, 3}, false, true, 1, 2, "Page 1 of 3"},
		{"middle", Window{2, 3}, true, true, 1, 3, "Page 2 of 3"},
		{"last", Window{3, 3}, true, false, 2, 3, "Page 3 of 3"},
		{"single page", Window{1, 1}, false, false, 1, 1, "Page 1 of 1"},
		{"past the end", Window{4, 3}, true, false, 3, 4, "Page 4 of 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.hasPrev, tt.w.HasPrev())
			assert.Equal(t, tt.hasNext, tt.w.HasNext())
			assert.Equal(t, tt.prev, tt.w.Prev())
			assert.Equal(t, tt.next, tt.w.Next())
			assert.Equal(t, tt.label, tt.w.Label())
		})
	}
}
