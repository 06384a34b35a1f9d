package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"timsbridge/internal/export"
	"timsbridge/internal/middleware"
	"timsbridge/internal/service"
	"timsbridge/pkg/pagination"
	"timsbridge/pkg/response"

	"github.com/gin-gonic/gin"
)

type FiscalResponseHandler struct {
	responseService service.FiscalResponseService
	secret          []byte
}

func NewFiscalResponseHandler(responseService service.FiscalResponseService, secret []byte) *FiscalResponseHandler {
	return &FiscalResponseHandler{responseService: responseService, secret: secret}
}

func (h *FiscalResponseHandler) RegisterRoutes(router *gin.RouterGroup) {
	responses := router.Group("/api/tims/responses")
	responses.Use(middleware.RequireRole(h.secret, middleware.RoleAdmin, middleware.RoleAccountant))
	{
		responses.GET("", h.ListResponses)
		responses.GET("/export", h.ExportResponses)
		responses.GET("/:id", h.GetResponse)
	}
}

func responseFilter(c *gin.Context) service.DeviceResponseFilter {
	return service.DeviceResponseFilter{
		InvoiceNumber: c.Query("invoice"),
		ResponseCode:  c.Query("response_code"),
	}
}

// ListResponses returns the device response audit trail
// @Summary      List device responses
// @Tags         tims
// @Security     BearerAuth
// @Produce      json
// @Param        invoice        query     string  false  "Filter by invoice name"
// @Param        response_code  query     string  false  "Filter by response code"
// @Param        page           query     int     false  "Page number (default 1)"
// @Param        limit          query     int     false  "Number of items per page (default 20)"
// @Success      200            {object}  response.Response{data=object}
// @Router       /api/tims/responses [get]
func (h *FiscalResponseHandler) ListResponses(c *gin.Context) {
	p := pagination.Parse(c)
	filter := responseFilter(c)
	filter.Page = p.Page
	filter.Limit = p.Limit

	rows, total, err := h.responseService.ListResponses(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"responses":   rows,
		"total":       total,
		"page":        p.Page,
		"limit":       p.Limit,
		"total_pages": p.TotalPages(total),
	}))
}

// GetResponse returns one stored device response
// @Summary      Get device response
// @Tags         tims
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Response ID"
// @Success      200  {object}  response.Response{data=model.DeviceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/tims/responses/{id} [get]
func (h *FiscalResponseHandler) GetResponse(c *gin.Context) {
	resp, err := h.responseService.GetResponse(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, resp))
}

// ExportResponses downloads the device responses as a spreadsheet
// @Summary      Export device responses
// @Tags         tims
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        invoice        query  string  false  "Filter by invoice name"
// @Param        response_code  query  string  false  "Filter by response code"
// @Success      200
// @Router       /api/tims/responses/export [get]
func (h *FiscalResponseHandler) ExportResponses(c *gin.Context) {
	var buf bytes.Buffer
	if _, err := h.responseService.ExportResponses(c.Request.Context(), responseFilter(c), &buf); err != nil {
		writeError(c, err, nil)
		return
	}

	filename := fmt.Sprintf("tims-responses-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
