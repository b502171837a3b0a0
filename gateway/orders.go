package gateway

import (
	"fmt"
	"net/http"

	"github.com/example/homecook/pkg/api"
	"github.com/example/homecook/pkg/models"
	"github.com/gin-gonic/gin"
)

type statusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// placeOrder godoc
// @Summary  Place an order
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    order body api.PlaceOrderInput true "Order"
// @Success  201 {object} api.OrderDetails
// @Router   /orders [post]
func (g *Gateway) placeOrder(c *gin.Context) {
	var req api.PlaceOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := g.api.PlaceOrder(c.Request.Context(), principal(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// customerOrders godoc
// @Summary  List the caller's orders
// @Tags     orders
// @Produce  json
// @Success  200 {array} api.OrderDetails
// @Router   /orders [get]
func (g *Gateway) customerOrders(c *gin.Context) {
	orders, err := g.api.CustomerOrders(c.Request.Context(), principal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": len(orders)})
}

// getOrder godoc
// @Summary  Order with items and delivery
// @Tags     orders
// @Produce  json
// @Param    id path string true "Order ID"
// @Success  200 {object} api.OrderDetails
// @Failure  404 {object} map[string]string
// @Router   /orders/{id} [get]
func (g *Gateway) getOrder(c *gin.Context) {
	order, err := g.api.OrderDetails(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// updateOrderStatus godoc
// @Summary  Move an order to a new status
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    id path string true "Order ID"
// @Param    status body statusRequest true "New status"
// @Success  200 {object} models.Order
// @Router   /orders/{id}/status [put]
func (g *Gateway) updateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.Status.Valid() {
		badRequest(c, fmt.Errorf("unknown order status %q", req.Status))
		return
	}
	order, err := g.api.UpdateOrderStatus(c.Request.Context(), principal(c), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// deleteOrder godoc
// @Summary  Delete an order and its items
// @Tags     orders
// @Produce  json
// @Param    id path string true "Order ID"
// @Success  200 {object} api.DeleteResult
// @Failure  409 {object} map[string]string "order left without items"
// @Router   /orders/{id} [delete]
func (g *Gateway) deleteOrder(c *gin.Context) {
	res, err := g.api.DeleteOrder(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// cookerOrders godoc
// @Summary  The signed-in chef's orders
// @Tags     orders
// @Produce  json
// @Success  200 {array} api.CookerOrder
// @Router   /cooker/orders [get]
func (g *Gateway) cookerOrders(c *gin.Context) {
	orders, err := g.api.CookerOrders(c.Request.Context(), principal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": len(orders)})
}
