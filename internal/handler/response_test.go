package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagination(t *testing.T) {
	cases := []struct {
		target   string
		page     int
		pageSize int
	}{
		{"/x", 1, defaultPageSize},
		{"/x?page=3&page_size=10", 3, 10},
		{"/x?page=0&page_size=0", 1, defaultPageSize},
		{"/x?page=-2&page_size=-5", 1, defaultPageSize},
		{"/x?page=abc&page_size=def", 1, defaultPageSize},
		{"/x?page_size=500", 1, maxPageSize},
	}
	for _, tc := range cases {
		c, _ := newCtx(t, http.MethodGet, tc.target, "")
		page, pageSize := pagination(c)
		assert.Equal(t, tc.page, page, tc.target)
		assert.Equal(t, tc.pageSize, pageSize, tc.target)
	}
}

func TestNewListMeta(t *testing.T) {
	assert.Equal(t, 0, newListMeta(0, 1, 20).TotalPages)
	assert.Equal(t, 1, newListMeta(20, 1, 20).TotalPages)
	assert.Equal(t, 2, newListMeta(21, 1, 20).TotalPages)
	assert.Equal(t, 2, newListMeta(25, 2, 20).TotalPages)
}
