package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pay-gateway-api/internal/constant"
	"pay-gateway-api/internal/dto"
	"pay-gateway-api/internal/service"
	"pay-gateway-api/internal/utils"
)

// PayHandler abpay下单/回调/查单
type PayHandler struct{ svc *service.AbpayService }

func NewPayHandler() *PayHandler {
	return &PayHandler{svc: service.NewAbpayService()}
}

// UnifiedOrder 统一下单
func (h *PayHandler) UnifiedOrder(c *gin.Context) {
	var req dto.CreateOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorWithData(constant.CodeMissingParams, err.Error()))
		return
	}
	if req.ClientIp == "" {
		req.ClientIp = utils.GetClientIP(c)
	}

	resp, err := h.svc.UnifiedOrder(c.Request.Context(), req)
	if err != nil {
		log.Printf("[PAY] 下单失败, mchOrderNo=%s err=%v", req.MchOrderNo, err)
		c.JSON(http.StatusBadGateway, utils.CustomError(constant.CodeGatewayError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Notify 上游异步通知。验签不过直接拒绝,不碰任何订单。
func (h *PayHandler) Notify(c *gin.Context) {
	payload := parseCallbackPayload(c)
	if !h.svc.VerifyNotification(payload) {
		log.Printf("[PAY] 回调验签失败: %s", utils.MapToJSON(payload))
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": "signature invalid"})
		return
	}

	if _, err := h.svc.HandleNotification(c.Request.Context(), payload); err != nil {
		log.Printf("[PAY] 回调处理失败: %v", err)
		c.JSON(http.StatusInternalServerError, utils.Error(constant.CodeSystemError))
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "success"})
}

// Query 查单,GET/POST 都接受
func (h *PayHandler) Query(c *gin.Context) {
	var req dto.QueryOrderReq
	_ = c.ShouldBind(&req)

	resp, err := h.svc.QueryOrder(c.Request.Context(), req)
	if errors.Is(err, service.ErrMissingOrderRef) {
		c.JSON(http.StatusBadRequest, utils.Error(constant.CodeMissingParams))
		return
	}
	if err != nil {
		log.Printf("[PAY] 查单失败, mchOrderNo=%s payOrderId=%s err=%v", req.MchOrderNo, req.PayOrderId, err)
		c.JSON(http.StatusBadGateway, utils.CustomError(constant.CodeGatewayError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
