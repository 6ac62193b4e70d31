package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// ParseLimit reads a "limit" query parameter, clamped to [1, MaxPageSize].
func ParseLimit(c *gin.Context) int {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return DefaultPageSize
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// ParseIDParam parses a path parameter as an int64 identifier.
func ParseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
