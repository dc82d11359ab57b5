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

// FlashpayHandler flashpay充值/回调
type FlashpayHandler struct{ svc *service.FlashpayService }

func NewFlashpayHandler() *FlashpayHandler {
	return &FlashpayHandler{svc: service.NewFlashpayService()}
}

// Deposit 充值下单
func (h *FlashpayHandler) Deposit(c *gin.Context) {
	var req dto.FlashDepositReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorWithData(constant.CodeMissingParams, err.Error()))
		return
	}
	if req.Ip == "" {
		req.Ip = utils.GetClientIP(c)
	}

	reference, resp, err := h.svc.Deposit(c.Request.Context(), req)
	if err != nil {
		log.Printf("[FLASHPAY] 充值失败, reference=%s err=%v", reference, err)
		c.JSON(http.StatusBadGateway, utils.CustomError(constant.CodeGatewayError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reference":         reference,
		"flashpay_response": resp,
	})
}

// Callback flashpay回调,按 merchantorderid 对账
func (h *FlashpayHandler) Callback(c *gin.Context) {
	payload := parseCallbackPayload(c)
	log.Printf("[FLASHPAY] 收到回调: %s", utils.MapToJSON(payload))

	_, err := h.svc.HandleCallback(c.Request.Context(), payload)
	if errors.Is(err, service.ErrMissingReference) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing merchantorderid"})
		return
	}
	if err != nil {
		log.Printf("[FLASHPAY] 回调处理失败: %v", err)
		c.JSON(http.StatusInternalServerError, utils.Error(constant.CodeSystemError))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
