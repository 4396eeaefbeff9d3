package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func parsePagination(ctx *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(ctx.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	offset, err = strconv.Atoi(ctx.Query("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	return limit, offset
}
