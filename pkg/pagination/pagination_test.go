package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginateMiddlePage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	res := Paginate(items, &PaginationParams{Page: 2, PerPage: 3})

	assert.Equal(t, []int{4, 5, 6}, res.Items)
	assert.Equal(t, int64(7), res.Pagination.Total)
	assert.Equal(t, 3, res.Pagination.TotalPages)
	assert.True(t, res.Pagination.HasNext)
	assert.True(t, res.Pagination.HasPrev)
}

func TestPaginatePastTheEnd(t *testing.T) {
	res := Paginate([]string{"a"}, &PaginationParams{Page: 9, PerPage: 10})

	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.False(t, res.Pagination.HasNext)
}

func TestValidateClampsParams(t *testing.T) {
	p := &PaginationParams{Page: -1, PerPage: 1000}
	p.Validate()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PerPage)
}
