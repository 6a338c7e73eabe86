package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		selected int
		pages    int
		siblings int
		want     Window
	}{
		{"no pages", 0, 0, 1, Window{}},
		{"single page", 0, 1, 1, Window{Pages: []int{0}}},
		{"two pages", 1, 2, 1, Window{Pages: []int{0, 1}, Selected: 1}},
		{"few pages show all", 2, 5, 1, Window{Pages: []int{0, 1, 2, 3, 4}, Selected: 2}},
		{"start shifts inward", 0, 10, 1, Window{Pages: []int{0, 1, 2, 3, 9}, TrailingGap: true}},
		{"middle", 5, 10, 1, Window{Pages: []int{0, 4, 5, 6, 9}, Selected: 5, LeadingGap: true, TrailingGap: true}},
		{"end shifts inward", 9, 10, 1, Window{Pages: []int{0, 6, 7, 8, 9}, Selected: 9, LeadingGap: true}},
		{"next to last", 8, 10, 1, Window{Pages: []int{0, 6, 7, 8, 9}, Selected: 8, LeadingGap: true}},
		{"selected clamped", 42, 10, 2, Window{Pages: []int{0, 4, 5, 6, 7, 8, 9}, Selected: 9, LeadingGap: true}},
		{"no siblings", 4, 10, 0, Window{Pages: []int{0, 4, 9}, Selected: 4, LeadingGap: true, TrailingGap: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compute(tt.selected, tt.pages, tt.siblings))
		})
	}
}

func TestWindowSizeIsStable(t *testing.T) {
	for selected := 0; selected < 20; selected++ {
		w := Compute(selected, 20, 2)
		assert.Len(t, w.Pages, 7, "selected %d", selected)
		assert.Contains(t, w.Pages, selected)
	}
}

func TestPages(t *testing.T) {
	assert.Equal(t, 0, Pages(0, 25))
	assert.Equal(t, 1, Pages(25, 25))
	assert.Equal(t, 2, Pages(26, 25))
	assert.Equal(t, 0, Pages(10, 0))
}
