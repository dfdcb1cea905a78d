// Package handler exposes the orders use cases over HTTP with gin.
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/potgreen/nursery-backend/internal/domains/orders/adapters/http/mapper"
	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
	apierrors "github.com/potgreen/nursery-backend/internal/shared/errors"
)

// BasePath is where the admin order routes are mounted.
const BasePath = "/api/admin/orders"

// OrderAPI wires HTTP transport with the orders service.
type OrderAPI struct {
	service   ports.Service
	responder *apierrors.ChainedResponder
}

// NewOrderAPI creates an OrderAPI backed by the provided service.
func NewOrderAPI(service ports.Service) *OrderAPI {
	return &OrderAPI{
		service:   service,
		responder: apierrors.NewChainedResponder("", mapper.ProblemFromError),
	}
}

// Register mounts the order routes on router.
func (api *OrderAPI) Register(router gin.IRouter) {
	group := router.Group(BasePath)
	group.GET("", api.ListOrders)
	group.GET("/:id", api.GetOrder)
	group.PUT("/:id/status", api.UpdateStatus)
}

// Get /api/admin/orders
// Lists orders with optional status, date range and search filters.
func (api *OrderAPI) ListOrders(c *gin.Context) {
	var malformed []string
	page, ok := intQuery(c, "page")
	if !ok {
		malformed = append(malformed, "page")
	}
	limit, ok := intQuery(c, "limit")
	if !ok {
		malformed = append(malformed, "limit")
	}
	result, err := api.service.ListOrders(c.Request.Context(), ports.ListOrdersInput{
		Credential: credential(c),
		Status:     c.Query("status"),
		StartDate:  c.Query("startDate"),
		EndDate:    c.Query("endDate"),
		Search:     c.Query("search"),
		Page:       page,
		PageSize:   limit,
		Malformed:  malformed,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.NewListResponse(result))
}

// Get /api/admin/orders/:id
// Returns a single order.
func (api *OrderAPI) GetOrder(c *gin.Context) {
	order, err := api.service.GetOrder(c.Request.Context(), ports.GetOrderInput{
		Credential: credential(c),
		OrderID:    c.Param("id"),
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.NewOrderResponse(order))
}

// Put /api/admin/orders/:id/status
// Moves an order to a new status.
func (api *OrderAPI) UpdateStatus(c *gin.Context) {
	var payload mapper.UpdateStatusRequest
	// A malformed body reaches the service as an empty status, which fails
	// validation only after the credential has been checked.
	if err := c.ShouldBindJSON(&payload); err != nil {
		payload.Status = ""
	}
	order, err := api.service.UpdateStatus(c.Request.Context(), ports.UpdateStatusInput{
		Credential: credential(c),
		OrderID:    c.Param("id"),
		Status:     payload.Status,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.NewOrderResponse(order))
}

// intQuery reads an optional integer parameter. Unparsable values are
// reported rather than rejected so the service checks the credential first.
func intQuery(c *gin.Context, key string) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

func credential(c *gin.Context) string {
	return c.GetHeader("Authorization")
}
