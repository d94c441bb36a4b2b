package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/interfaces/http/dto"
)

// bindListFilter binds common pagination query parameters into a repository
// filter, responding with 400 on binding failure
func bindListFilter(h BaseHandler, c *gin.Context) (shared.Filter, bool) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return shared.Filter{}, false
	}
	return req.ToFilter(), true
}
