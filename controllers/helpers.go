package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func parsePaginationParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func paginated(items interface{}, total int64, page, limit int) gin.H {
	return gin.H{
		"items": items,
		"total": total,
		"page":  page,
		"limit": limit,
	}
}
