package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConfig - параметры подключения к брокеру
type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// MQTTSurface публикует уведомления в топик получателя: <prefix>/<recipient_id>
type MQTTSurface struct {
	client mqtt.Client
	prefix string
}

// NewMQTTClient подключается к брокеру
func NewMQTTClient(cfg MQTTConfig) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return client, nil
}

// NewMQTTSurface создает поверхность поверх подключенного клиента
func NewMQTTSurface(client mqtt.Client, topicPrefix string) *MQTTSurface {
	if topicPrefix == "" {
		topicPrefix = "civic/alerts"
	}
	return &MQTTSurface{client: client, prefix: topicPrefix}
}

// Topic возвращает топик получателя
func (s *MQTTSurface) Topic(recipientID string) string {
	return s.prefix + "/" + recipientID
}

// Notify публикует уведомление с QoS 1; ожидание ограничено контекстом
func (s *MQTTSurface) Notify(ctx context.Context, n Notification) error {
	if !s.client.IsConnectionOpen() {
		return fmt.Errorf("mqtt: connection is not open")
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("mqtt: marshal notification: %w", err)
	}

	token := s.client.Publish(s.Topic(n.RecipientID), 1, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("mqtt: publish: %w", ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: failed to publish to topic %s: %w", s.Topic(n.RecipientID), err)
	}
	return nil
}

// Close отключается от брокера
func (s *MQTTSurface) Close() {
	s.client.Disconnect(250)
}
