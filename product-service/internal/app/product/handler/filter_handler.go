package handler

import (
	"net/http"

	"ecommerce/pkg/logger"
	"ecommerce/product-service/internal/app/product/entity"
	"ecommerce/product-service/internal/app/product/service"

	"github.com/gin-gonic/gin"
)

// FilterHandler обрабатывает POST /search/filters
type FilterHandler struct {
	filterService service.FilterServiceInterface
}

func NewFilterHandler(filterService service.FilterServiceInterface) *FilterHandler {
	return &FilterHandler{filterService: filterService}
}

// SearchFilters отвечает ровно один раз: результатом первого переданного критерия.
// 400 - тело не JSON или выигравший критерий некорректен (price не пара, category/sub не ObjectID).
// Критерии с меньшим приоритетом не проверяются.
// 500 - ошибка MongoDB.
func (h *FilterHandler) SearchFilters(c *gin.Context) {
	var req entity.SearchFiltersRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	criterion, err := req.Criterion()
	if err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.filterService.Dispatch(c.Request.Context(), criterion)
	if err != nil {
		logger.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Msg("filter search failed")
		respondErr(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, products)
}
