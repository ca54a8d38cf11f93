package controllers

import (
	"io"

	"backend/pkg/resp"
	"backend/services"
	"backend/utils"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	Payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{Payments: payments}
}

// POST /payments/webhook
// The gateway retries non-2xx responses, so anything past signature
// verification answers 200; duplicates are absorbed by the handlers.
func (pc *PaymentController) Webhook(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		resp.BadRequest(c, "cannot read body")
		return
	}

	if err := pc.Payments.HandleWebhook(raw, c.GetHeader("X-Razorpay-Signature")); err != nil {
		resp.FromError(c, err)
		return
	}
	resp.OK(c, "ok", nil)
}

type verifyReq struct {
	OrderID   uint   `json:"orderId" binding:"required"`
	PaymentID string `json:"paymentId" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// POST /payments/verify
func (pc *PaymentController) Verify(c *gin.Context) {
	var req verifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	o, err := pc.Payments.Verify(req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.OK(c, "payment verified", o)
}

// GET /payments/orders/:id/status
func (pc *PaymentController) Status(c *gin.Context) {
	st, err := pc.Payments.Status(paramUint(c, "id"))
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.OK(c, "payment status", st)
}

type refundReq struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// POST /admin/orders/:id/refund
func (pc *PaymentController) Refund(c *gin.Context) {
	var req refundReq
	_ = c.ShouldBindJSON(&req)

	refund, o, err := pc.Payments.InitiateRefund(
		c.Request.Context(), paramUint(c, "id"), req.Amount, req.Reason, utils.Actor(utils.CurrentUserID(c)))
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.OK(c, "refund initiated", gin.H{"refund": refund, "order": o})
}
