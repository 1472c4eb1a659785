package mq

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// 交换机与队列在启动时统一声明，消费端和发布端共用一份定义

const (
	// ExchangeEvents 入驻事件交换机
	ExchangeEvents = "partnergo.events"
	// ExchangeDelayed 延迟交换机，依赖 rabbitmq-delayed-message-exchange 插件
	ExchangeDelayed = "partnergo.delayed"

	QueueProfileSync         = "partnergo.profile.sync"
	QueueOnboardingCompleted = "partnergo.onboarding.completed"
	QueueOnboardingReminder  = "partnergo.onboarding.reminder"

	RoutingKeyProfileSync         = "profile.sync"
	RoutingKeyOnboardingCompleted = "onboarding.completed"
	RoutingKeyOnboardingReminder  = "onboarding.reminder"
)

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		ExchangeEvents,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	if err := ch.ExchangeDeclare(
		ExchangeDelayed,
		"x-delayed-message",
		true,
		false,
		false,
		false,
		amqp.Table{"x-delayed-type": "topic"},
	); err != nil {
		return err
	}

	bindings := []struct {
		queue    string
		key      string
		exchange string
	}{
		{QueueProfileSync, RoutingKeyProfileSync, ExchangeEvents},
		{QueueOnboardingCompleted, RoutingKeyOnboardingCompleted, ExchangeEvents},
		{QueueOnboardingReminder, RoutingKeyOnboardingReminder, ExchangeDelayed},
	}

	for _, b := range bindings {
		if _, err := ch.QueueDeclare(
			b.queue,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,
		); err != nil {
			return err
		}

		if err := ch.QueueBind(b.queue, b.key, b.exchange, false, nil); err != nil {
			return err
		}
	}

	return nil
}
