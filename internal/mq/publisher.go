package mq

import (
	"encoding/json"
	"log"

	"pay-gateway-api/internal/dal"

	"github.com/streadway/amqp"
)

type OrderCreatedEvent struct {
	MchOrderNo string `json:"mch_order_no"`
	MchNo      string `json:"mch_no"`
	WayCode    string `json:"way_code"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	CreatedAt  int64  `json:"created_at"`
}

type OrderStateChangedEvent struct {
	MchOrderNo string `json:"mch_order_no"`
	PayOrderId string `json:"pay_order_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	Source     string `json:"source"` // notify_payload / query_response / response
	ChangedAt  int64  `json:"changed_at"`
}

func PublishOrderCreated(evt OrderCreatedEvent) error {
	return publish("order.created", evt)
}

func PublishOrderStateChanged(evt OrderStateChangedEvent) error {
	return publish("order.state_changed", evt)
}

func publish(routingKey string, v interface{}) error {
	if dal.RabbitCh == nil {
		return nil
	}
	b, _ := json.Marshal(v)
	err := dal.RabbitCh.Publish(
		"order_events",
		routingKey,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         b,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		log.Printf("[MQ] publish %s failed: %v", routingKey, err)
	}
	return err
}
