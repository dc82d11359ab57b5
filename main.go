package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"pay-gateway-api/internal/config"
	"pay-gateway-api/internal/dal"
	"pay-gateway-api/internal/handler"
	"pay-gateway-api/internal/idgen"
	"pay-gateway-api/internal/middleware"
)

func main() {
	// load config env
	config.Init()

	// init infra
	dal.InitDB()
	dal.InitRedis()
	dal.InitRabbitMQ()

	// idgen
	idgen.Init(1)

	// http server
	if config.C.Server.Mode != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Recover(), middleware.Logger())

	v1 := r.Group("/api/v1")
	{
		ph := handler.NewPayHandler()
		v1.POST("/pay/unifiedOrder", ph.UnifiedOrder)
		v1.POST("/pay/notify", ph.Notify)
		v1.GET("/pay/query", ph.Query)
		v1.POST("/pay/query", ph.Query)

		fh := handler.NewFlashpayHandler()
		v1.POST("/flashpay/deposit", fh.Deposit)
		v1.POST("/flashpay/callback", fh.Callback)
	}

	addr := ":" + config.C.Server.Port
	log.Printf("listening %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
