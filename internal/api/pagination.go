package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const maxPageSize = 100

// pagination is a 1-based page with a page size.
type pagination struct {
	page  int
	limit int
}

func (p pagination) offset() int {
	return (p.page - 1) * p.limit
}

// paginate reads the page and limit query parameters.
func paginate(c *gin.Context, defaultLimit int) (pagination, error) {
	p := pagination{page: 1, limit: defaultLimit}
	verr := service.NewValidationError()

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			verr.Add("page", "A valid page number is required.")
		}
		p.page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			verr.Add("limit", "A positive integer is required.")
		}
		p.limit = limit
	}
	if p.limit > maxPageSize {
		p.limit = maxPageSize
	}
	return p, verr.OrNil()
}

// intQuery reads an optional non-negative integer, returning def when absent.
func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, service.NewValidationError().Add(name, "A non-negative integer is required.")
	}
	return v, nil
}

// newPage builds the paginated envelope with absolute next/previous links.
func newPage[T any](c *gin.Context, p pagination, count int64, results []T) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	page := types.Page[T]{Count: count, Results: results}
	if int64(p.page*p.limit) < count {
		page.Next = pageURL(c, p.page+1)
	}
	if p.page > 1 {
		page.Previous = pageURL(c, p.page-1)
	}
	return page
}

func pageURL(c *gin.Context, page int) *string {
	u := *c.Request.URL
	q := u.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	u.Host = c.Request.Host
	u.Scheme = "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}
	s := u.String()
	return &s
}
