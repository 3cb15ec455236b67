package services

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/infrastructure/config"
	"strata-portal/pkg/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// Broadcast topics. Lobby displays subscribe to the building topic.
const (
	TopicAnnouncements         = "strata/announcements"
	TopicBuildingAnnouncements = "strata/buildings/%d/announcements"
)

// AnnouncementTopic returns the topic an announcement is published to
func AnnouncementTopic(buildingID *uint) string {
	if buildingID == nil {
		return TopicAnnouncements
	}
	return fmt.Sprintf(TopicBuildingAnnouncements, *buildingID)
}

// AnnouncementMessage is the payload sent to displays
type AnnouncementMessage struct {
	Action       string               `json:"action"` // created, updated, deleted
	Announcement *models.Announcement `json:"announcement"`
	Timestamp    int64                `json:"timestamp"`
}

// InterfaceBroadcastService publishes announcements to the message broker
type InterfaceBroadcastService interface {
	Enabled() bool
	Connect() error
	Disconnect()
	PublishAnnouncement(action string, a *models.Announcement) error
}

// MQTTBroadcastService publishes over MQTT
type MQTTBroadcastService struct {
	Config *config.Config
	Client mqtt.Client

	mu          sync.Mutex
	isConnected bool
}

// NewBroadcastService returns an MQTT broadcaster, or a no-op one when MQTT is disabled
func NewBroadcastService(cfg *config.Config) InterfaceBroadcastService {
	if !cfg.MQTTEnabled {
		return noopBroadcast{}
	}

	s := &MQTTBroadcastService{Config: cfg}
	s.setupMQTTClient()
	return s
}

func (s *MQTTBroadcastService) setupMQTTClient() {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.Config.MQTTBrokerURL)
	// unique per instance so replicas do not kick each other off
	opts.SetClientID(fmt.Sprintf("%s-%s", s.Config.MQTTClientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)

	if s.Config.MQTTUsername != "" {
		opts.SetUsername(s.Config.MQTTUsername)
		opts.SetPassword(s.Config.MQTTPassword)
	}
	if strings.HasPrefix(s.Config.MQTTBrokerURL, "ssl://") || strings.HasPrefix(s.Config.MQTTBrokerURL, "tls://") {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warning("[MQTT] connection lost: %v", err)
		s.setConnected(false)
	})
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("[MQTT] connected to %s", s.Config.MQTTBrokerURL)
		s.setConnected(true)
	})
	opts.SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		logger.Info("[MQTT] reconnecting")
	})

	s.Client = mqtt.NewClient(opts)
}

func (s *MQTTBroadcastService) setConnected(v bool) {
	s.mu.Lock()
	s.isConnected = v
	s.mu.Unlock()
}

func (s *MQTTBroadcastService) connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isConnected && s.Client.IsConnected()
}

// Enabled is always true for the MQTT broadcaster
func (s *MQTTBroadcastService) Enabled() bool { return true }

// 1 Connect connects with exponential backoff
func (s *MQTTBroadcastService) Connect() error {
	if s.connected() {
		return nil
	}

	const maxRetries = 3
	var err error
	for i := 0; i < maxRetries; i++ {
		token := s.Client.Connect()
		if token.WaitTimeout(5*time.Second) && token.Error() == nil {
			s.setConnected(true)
			return nil
		}
		err = token.Error()
		backoff := time.Duration(1<<uint(i)) * time.Second
		logger.Warning("[MQTT] connect attempt %d/%d failed: %v, retrying in %v", i+1, maxRetries, err, backoff)
		time.Sleep(backoff)
	}
	return fmt.Errorf("mqtt connect failed after %d attempts: %v", maxRetries, err)
}

// 2 Disconnect closes the broker connection
func (s *MQTTBroadcastService) Disconnect() {
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
	s.setConnected(false)
}

// 3 PublishAnnouncement sends the announcement to its topic with the configured QoS
func (s *MQTTBroadcastService) PublishAnnouncement(action string, a *models.Announcement) error {
	if !s.connected() {
		if err := s.Connect(); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(AnnouncementMessage{
		Action:       action,
		Announcement: a,
		Timestamp:    time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal announcement: %w", err)
	}

	topic := AnnouncementTopic(a.BuildingID)
	token := s.Client.Publish(topic, byte(s.Config.MQTTQoS), false, payload)
	if !token.WaitTimeout(3 * time.Second) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}

	logger.Info("[MQTT] announcement %d %s on %s", a.ID, action, topic)
	return nil
}

type noopBroadcast struct{}

func (noopBroadcast) Enabled() bool                                          { return false }
func (noopBroadcast) Connect() error                                         { return nil }
func (noopBroadcast) Disconnect()                                            {}
func (noopBroadcast) PublishAnnouncement(string, *models.Announcement) error { return nil }
