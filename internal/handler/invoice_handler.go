package handler

import (
	"net/http"
	"strconv"

	"timsbridge/internal/middleware"
	"timsbridge/internal/service"
	"timsbridge/pkg/pagination"
	"timsbridge/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	secret         []byte
}

func NewInvoiceHandler(invoiceService service.InvoiceService, secret []byte) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		secret:         secret,
	}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyStaff := middleware.RequireRole(h.secret, middleware.RoleAdmin, middleware.RoleAccountant, middleware.RoleCashier)
	accounts := middleware.RequireRole(h.secret, middleware.RoleAdmin, middleware.RoleAccountant)

	invoices := router.Group("/api/invoices")
	{
		invoices.POST("", anyStaff, h.CreateInvoice)
		invoices.GET("", anyStaff, h.ListInvoices)
		invoices.GET("/:name", anyStaff, h.GetInvoice)
		invoices.POST("/:name/submit", anyStaff, h.SubmitInvoice)
		invoices.POST("/:name/fiscalize", accounts, h.FiscalizeInvoice)
	}
}

// CreateInvoice stores a draft sales invoice or credit note
// @Summary      Create invoice
// @Description  Stores a draft sales invoice or credit note with its line items
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceRequest  true  "Create Invoice Payload"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req, middleware.Actor(c))
	if err != nil {
		writeError(c, err, nil)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// ListInvoices returns a paginated list of invoices
// @Summary      List invoices
// @Description  Retrieves a paginated list of invoices, optionally filtered by status and fiscal state
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        status         query     string  false  "Filter by status (Draft, Unpaid, Paid, Return)"
// @Param        fiscal_status  query     string  false  "Filter by fiscal status (NOT_SENT, SENDING, ACKNOWLEDGED)"
// @Param        sent_to_kra    query     bool    false  "Filter by fiscalized flag"
// @Param        page           query     int     false  "Page number (default 1)"
// @Param        limit          query     int     false  "Number of items per page (default 20)"
// @Success      200            {object}  response.Response{data=object}
// @Failure      500            {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	p := pagination.Parse(c)
	filter := service.InvoiceFilter{
		Status:       c.Query("status"),
		FiscalStatus: c.Query("fiscal_status"),
		Page:         p.Page,
		Limit:        p.Limit,
	}
	if raw := c.Query("sent_to_kra"); raw != "" {
		sent, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "sent_to_kra must be true or false"))
			return
		}
		filter.Fiscalized = &sent
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"invoices":    invoices,
		"total":       total,
		"page":        p.Page,
		"limit":       p.Limit,
		"total_pages": p.TotalPages(total),
	}))
}

// GetInvoice returns one invoice with its fiscal fields
// @Summary      Get invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        name  path      string  true  "Invoice name"
// @Success      200   {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404   {object}  response.Response
// @Router       /api/invoices/{name} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// SubmitInvoice finalizes a draft, sending it to TIMS first when enabled
// @Summary      Submit invoice
// @Description  Finalizes a draft invoice. When sending on submit is enabled the invoice is fiscalized first; if that fails and submission on failure is not allowed, the invoice stays draft.
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        name  path      string  true  "Invoice name"
// @Success      200   {object}  response.Response{data=service.SubmitInvoiceResponse}
// @Failure      404   {object}  response.Response
// @Failure      409   {object}  response.Response{data=service.SubmitInvoiceResponse}
// @Router       /api/invoices/{name}/submit [post]
func (h *InvoiceHandler) SubmitInvoice(c *gin.Context) {
	res, err := h.invoiceService.SubmitInvoice(c.Request.Context(), c.Param("name"), middleware.Actor(c))
	if err != nil {
		var data interface{}
		if res.Fiscalization != nil {
			data = res
		}
		writeError(c, err, data)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// FiscalizeInvoice sends an invoice to the TIMS device on demand
// @Summary      Send invoice to TIMS
// @Description  Runs the submission protocol for one invoice regardless of the send-on-submit flags
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        name  path      string  true  "Invoice name"
// @Success      200   {object}  response.Response{data=service.SubmissionResult}
// @Failure      409   {object}  response.Response{data=service.SubmissionResult}
// @Failure      412   {object}  response.Response{data=service.SubmissionResult}
// @Failure      422   {object}  response.Response{data=service.SubmissionResult}
// @Failure      502   {object}  response.Response{data=service.SubmissionResult}
// @Router       /api/invoices/{name}/fiscalize [post]
func (h *InvoiceHandler) FiscalizeInvoice(c *gin.Context) {
	result, err := h.invoiceService.FiscalizeInvoice(c.Request.Context(), c.Param("name"), middleware.Actor(c))
	if err != nil {
		var data interface{}
		if result != nil {
			data = result
		}
		writeError(c, err, data)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
