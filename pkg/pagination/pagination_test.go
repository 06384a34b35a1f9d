package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query  string
		want   Params
		offset int
	}{
		{"", Params{Page: 1, Limit: 20}, 0},
		{"page=3&limit=10", Params{Page: 3, Limit: 10}, 20},
		{"page=0&limit=0", Params{Page: 1, Limit: 20}, 0},
		{"page=abc&limit=500", Params{Page: 1, Limit: 100}, 0},
		{"page=-2&limit=7", Params{Page: 1, Limit: 7}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/?"+tt.query, nil)
			got := Parse(c)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.offset, got.Offset())
		})
	}
}

func TestTotalPages(t *testing.T) {
	p := Params{Page: 1, Limit: 20}
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(20))
	assert.Equal(t, 2, p.TotalPages(21))
	assert.Equal(t, 0, Params{}.TotalPages(5))
}
