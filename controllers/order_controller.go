package controllers

import (
	"strconv"

	"backend/pkg/resp"
	"backend/services"
	"backend/utils"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// POST /orders
// 201 on a fresh order, 200 with code ORDER_EXISTS on an idempotent replay.
func (oc *OrderController) Create(c *gin.Context) {
	var req services.CreateOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	res, err := oc.Orders.Create(c.Request.Context(), utils.CurrentUserID(c), &req, c.ClientIP())
	if err != nil {
		resp.FromError(c, err)
		return
	}
	if res.Existing {
		resp.OKCode(c, "ORDER_EXISTS", "order already exists", gin.H{"order": res.Order})
		return
	}
	resp.Created(c, "order created", gin.H{"order": res.Order, "paymentIntent": res.Intent})
}

// GET /orders
func (oc *OrderController) ListMine(c *gin.Context) {
	page, limit := pagination(c)
	orders, total, err := oc.Orders.ListForUser(utils.CurrentUserID(c), c.Query("status"), page, limit)
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.OK(c, "orders", gin.H{"orders": orders, "total": total, "page": page, "limit": limit})
}

// GET /orders/:id
func (oc *OrderController) Detail(c *gin.Context) {
	o, err := oc.Orders.DetailForUser(utils.CurrentUserID(c), paramUint(c, "id"))
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.OK(c, "order", o)
}

type cancelReq struct {
	Reason string `json:"reason"`
}

// POST /orders/:id/cancel
func (oc *OrderController) Cancel(c *gin.Context) {
	var req cancelReq
	_ = c.ShouldBindJSON(&req)

	o, err := oc.Orders.Cancel(c.Request.Context(), utils.CurrentUserID(c), paramUint(c, "id"), req.Reason)
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.OK(c, "order cancelled", o)
}

// ----- Restaurant side -----

// GET /owner/restaurants/:id/orders
func (oc *OrderController) ListForRestaurant(c *gin.Context) {
	page, limit := pagination(c)
	orders, total, err := oc.Orders.ListForRestaurant(
		utils.CurrentUserID(c), paramUint(c, "id"), c.Query("status"), page, limit)
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.OK(c, "orders", gin.H{"orders": orders, "total": total, "page": page, "limit": limit})
}

// GET /owner/restaurants/:id/orders/:orderId
func (oc *OrderController) DetailForRestaurant(c *gin.Context) {
	o, err := oc.Orders.DetailForRestaurant(
		utils.CurrentUserID(c), paramUint(c, "id"), paramUint(c, "orderId"))
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.OK(c, "order", o)
}

type noteReq struct {
	Note string `json:"note"`
}

// POST /owner/orders/:id/confirm
func (oc *OrderController) Confirm(c *gin.Context) {
	var req noteReq
	_ = c.ShouldBindJSON(&req)

	o, err := oc.Orders.Confirm(utils.CurrentUserID(c), paramUint(c, "id"), req.Note)
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.OK(c, "order confirmed", o)
}

type rejectReq struct {
	Reason string `json:"reason" binding:"required"`
}

// POST /owner/orders/:id/reject
func (oc *OrderController) Reject(c *gin.Context) {
	var req rejectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	o, err := oc.Orders.Reject(c.Request.Context(), utils.CurrentUserID(c), paramUint(c, "id"), req.Reason)
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.OK(c, "order rejected", o)
}

type statusReq struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// PATCH /owner/orders/:id/status
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	o, err := oc.Orders.UpdateStatus(utils.CurrentUserID(c), paramUint(c, "id"), req.Status, req.Note)
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.OK(c, "status updated", o)
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}
