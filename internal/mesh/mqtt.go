package mesh

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/windmesh/bearing/internal/domain"
	"github.com/windmesh/bearing/internal/logger"
)

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
	retryInterval  = 5 * time.Second
)

// MQTTSink publishes cost snapshots as retained messages, one topic per
// node, so late joiners see the mesh's last known state without waiting
// out a publish cycle.
type MQTTSink struct {
	client      mqtt.Client
	topicPrefix string
	log         logger.Logger
}

// NewMQTTSink starts connecting to the broker in the background. A broker
// that is down at startup does not block the app; publishes fail until the
// retry loop gets through.
func NewMQTTSink(broker, topicPrefix, nodeID string, log logger.Logger) *MQTTSink {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("bearing-" + nodeID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(retryInterval).
		SetConnectTimeout(connectTimeout).
		SetOrderMatters(false)

	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info("mqtt connected", logger.String("broker", broker))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("mqtt connection lost", logger.Error(err))
	})

	client := mqtt.NewClient(opts)
	client.Connect()

	return &MQTTSink{
		client:      client,
		topicPrefix: topicPrefix,
		log:         log,
	}
}

func (s *MQTTSink) SendCostUpdate(ctx context.Context, nodeID string, snap domain.CostSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal cost snapshot: %w", err)
	}

	topic := s.topicPrefix + "/cost/" + nodeID
	token := s.client.Publish(topic, 0, true, data)

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("failed to publish to mqtt: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("mqtt publish timed out: %s", topic)
	}
}

func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
