package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		limit int
		total int64
		want  Pagination
	}{
		{"last partial page", 3, 20, 45, Pagination{Page: 3, Limit: 20, Total: 45, TotalPages: 3, HasNext: false, HasPrev: true}},
		{"first page", 1, 20, 45, Pagination{Page: 1, Limit: 20, Total: 45, TotalPages: 3, HasNext: true, HasPrev: false}},
		{"middle page", 2, 20, 45, Pagination{Page: 2, Limit: 20, Total: 45, TotalPages: 3, HasNext: true, HasPrev: true}},
		{"exact fit", 2, 10, 20, Pagination{Page: 2, Limit: 10, Total: 20, TotalPages: 2, HasNext: false, HasPrev: true}},
		{"empty first page", 1, 20, 0, Pagination{Page: 1, Limit: 20, Total: 0, TotalPages: 0, HasNext: false, HasPrev: false}},
		{"empty later page", 4, 20, 0, Pagination{Page: 4, Limit: 20, Total: 0, TotalPages: 0, HasNext: false, HasPrev: true}},
		{"beyond last page", 9, 20, 45, Pagination{Page: 9, Limit: 20, Total: 45, TotalPages: 3, HasNext: false, HasPrev: true}},
		{"single record", 1, 100, 1, Pagination{Page: 1, Limit: 100, Total: 1, TotalPages: 1, HasNext: false, HasPrev: false}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Paginate(tc.page, tc.limit, tc.total))
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, int64(0), Offset(1, 20))
	assert.Equal(t, int64(40), Offset(3, 20))
	assert.Equal(t, int64(9900), Offset(100, 100))
	assert.Equal(t, int64(0), Offset(0, 20))
	assert.Equal(t, int64(0), Offset(2, 0))
}

func TestOffset_SaturatesInsteadOfOverflowing(t *testing.T) {
	assert.Equal(t, int64(math.MaxInt64), Offset(100000000000000000, 100))
	assert.Equal(t, int64(math.MaxInt64), Offset(math.MaxInt, 2))
	assert.Equal(t, int64(math.MaxInt64-1), Offset(math.MaxInt64, 1))
}
