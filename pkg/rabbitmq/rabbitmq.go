package rabbitmq

import (
	"errors"
	"log"
	"time"

	"watchpost/config"

	"github.com/rabbitmq/amqp091-go"
)

func NewConnection(amqpCfg *config.AMQPConfig) (*amqp091.Connection, error) {

	var conn *amqp091.Connection
	var err error
	for i := range 5 {
		conn, err = amqp091.Dial(amqpCfg.BrokerLink)
		if err == nil {
			return conn, nil
		}
		time.Sleep(2 * time.Second)
		log.Printf("rabbitmq reconnection attempt %v", i+1)
	}
	log.Printf("failed to connect to rabbitmq, after %v attempts: %v", 5, err)
	return nil, errors.New("failed to connect to rabbitmq")
}

func SetupTopology(conn *amqp091.Connection, amqpCfg *config.AMQPConfig) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	return ch.ExchangeDeclare(
		amqpCfg.ExchangeName,
		amqpCfg.ExchangeType,
		true, false, false, false, nil,
	)
}
