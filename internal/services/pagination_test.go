package services

import (
	"math"
	"testing"

	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		size     int
		deleted  int
		expected models.Window
	}{
		{"first page", 1, 5, 0, models.Window{Skip: 0, Limit: 5}},
		{"second page", 2, 5, 0, models.Window{Skip: 5, Limit: 5}},
		{"second page after one delete", 2, 5, 1, models.Window{Skip: 4, Limit: 5}},
		{"third page after three deletes", 3, 10, 3, models.Window{Skip: 17, Limit: 10}},
		{"page zero is page one", 0, 5, 0, models.Window{Skip: 0, Limit: 5}},
		{"skip never negative", 1, 5, 4, models.Window{Skip: 0, Limit: 5}},
		{"negative deleted count ignored", 2, 5, -3, models.Window{Skip: 5, Limit: 5}},
		{"huge page saturates", math.MaxInt, 10, 0, models.Window{Skip: int64(math.MaxInt), Limit: 10}},
		{"huge page with deletes", math.MaxInt/5 + 2, 5, 1, models.Window{Skip: int64(math.MaxInt - 1), Limit: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Paginate(tt.page, tt.size, tt.deleted))
		})
	}
}

func TestWindow(t *testing.T) {
	assert.Equal(t, models.Window{Skip: 0, Limit: 5}, window(-1, 0, 5, 50))
	assert.Equal(t, models.Window{Skip: 10, Limit: 50}, window(10, 0, 500, 50))
	assert.Equal(t, models.Window{Skip: 3, Limit: 50}, window(3, 0, 0, 50))
	assert.Equal(t, models.Window{Skip: 4, Limit: 5}, window(5, 1, 5, 50))
	assert.Equal(t, models.Window{Skip: 0, Limit: 5}, window(2, 7, 5, 50))
	assert.Equal(t, models.Window{Skip: 5, Limit: 5}, window(5, -2, 5, 50))
}
