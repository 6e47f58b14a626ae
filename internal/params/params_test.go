package params

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePaginationDefaults(t *testing.T) {
	p := ParsePagination(url.Values{})

	assert.Equal(t, defaultLimit, p.Limit)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.Offset)
}

func TestParsePaginationClampsLimit(t *testing.T) {
	q := url.Values{"limit": {"500"}}
	p := ParsePagination(q)
	assert.Equal(t, maxLimit, p.Limit)

	q = url.Values{"limit": {"-3"}}
	p = ParsePagination(q)
	assert.Equal(t, defaultLimit, p.Limit)
}

func TestParsePaginationOffset(t *testing.T) {
	q := url.Values{"limit": {"10"}, "page": {"3"}}
	p := ParsePagination(q)

	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 20, p.Offset)
}

func TestParsePaginationIgnoresGarbage(t *testing.T) {
	q := url.Values{"limit": {"abc"}, "page": {"-1"}}
	p := ParsePagination(q)

	assert.Equal(t, defaultLimit, p.Limit)
	assert.Equal(t, 1, p.Page)
}

func TestComputeMeta(t *testing.T) {
	p := Pagination{Limit: 10, Page: 2, Offset: 10}
	p.ComputeMeta(35)

	assert.Equal(t, 35, p.Total)
	assert.Equal(t, 4, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = Pagination{Limit: 10, Page: 4, Offset: 30}
	p.ComputeMeta(35)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = Pagination{Limit: 10, Page: 1}
	p.ComputeMeta(0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}
