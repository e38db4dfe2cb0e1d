package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagination_Clean(t *testing.T) {
	p := Pagination{}
	p.Clean()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PerPage)

	p = Pagination{Page: -3, PerPage: -1}
	p.Clean()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PerPage)

	p = Pagination{Page: 4}
	p.Clean()
	assert.Equal(t, 30, p.Offset())
	assert.Equal(t, 10, p.Limit())
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name        string
		size, total int
		page        Pagination
		wantLast    int
		wantFrom    int
		wantTo      int
	}{
		{name: "empty result", size: 0, total: 0, page: Pagination{}, wantLast: 1, wantFrom: 0, wantTo: 0},
		{name: "single partial page", size: 3, total: 3, page: Pagination{}, wantLast: 1, wantFrom: 1, wantTo: 3},
		{name: "exact page boundary", size: 10, total: 20, page: Pagination{Page: 2}, wantLast: 2, wantFrom: 11, wantTo: 20},
		{name: "last short page", size: 5, total: 25, page: Pagination{Page: 3}, wantLast: 3, wantFrom: 21, wantTo: 25},
		{name: "page past the end", size: 0, total: 25, page: Pagination{Page: 9}, wantLast: 3, wantFrom: 0, wantTo: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPage(nil, tt.size, tt.total, tt.page)
			assert.Equal(t, tt.wantLast, got.LastPage)
			assert.Equal(t, tt.wantFrom, got.From)
			assert.Equal(t, tt.wantTo, got.To)
			assert.Equal(t, tt.total, got.Total)
			assert.Equal(t, DefaultPageSize, got.PerPage)
		})
	}
}
