// Package mqtt publishes dispatch notifications to an MQTT broker using the
// Eclipse Paho client.
package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/wassel-delivery/dispatch/core/model"
	"github.com/wassel-delivery/dispatch/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string      `json:"broker"`
	ClientID    string      `json:"client_id"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	TopicPrefix string      `json:"topic_prefix"`
	QoS         byte        `json:"qos"`
	UseTLS      bool        `json:"use_tls"`
	ClientCert  string      `json:"client_cert"`
	ClientKey   string      `json:"client_key"`
	CABundle    string      `json:"ca_bundle"`
	TLSConfig   *tls.Config `json:"-"`
}

// pahoClient is the subset of the Paho API the notifier uses.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Notifier publishes assignment, failure and escalation events to
// driver-facing MQTT topics.
type Notifier struct {
	cli    pahoClient
	prefix string
	qos    byte
	log    logger.Logger
}

// NewNotifier connects to the MQTT broker.
func NewNotifier(cfg Config) (*Notifier, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt-notifier")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	prefix := cfg.TopicPrefix
	if prefix == "" {
		prefix = "dispatch"
	}
	return &Notifier{cli: c, prefix: prefix, qos: cfg.QoS, log: log}, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// NotifyAssignment publishes the assignment to the winning driver's topic.
func (n *Notifier) NotifyAssignment(a model.Assignment) {
	msg := struct {
		OrderID        string  `json:"order_id"`
		DriverID       string  `json:"driver_id"`
		Score          float64 `json:"score"`
		DistanceMeters float64 `json:"distance_meters"`
		Algorithm      string  `json:"algorithm"`
		Timestamp      int64   `json:"timestamp"`
	}{
		OrderID:        a.OrderID,
		DriverID:       a.DriverID,
		Score:          a.Score,
		DistanceMeters: a.DistanceMeters,
		Algorithm:      a.Algorithm,
		Timestamp:      a.Timestamp.UnixMilli(),
	}
	n.publish(fmt.Sprintf("%s/assignments/%s", n.prefix, a.DriverID), msg)
}

// NotifyDispatchFailure publishes the failure to the operations topic.
func (n *Notifier) NotifyDispatchFailure(o model.Order, reason string) {
	msg := struct {
		OrderID   string `json:"order_id"`
		Reason    string `json:"reason"`
		Timestamp int64  `json:"timestamp"`
	}{
		OrderID:   o.ID,
		Reason:    reason,
		Timestamp: time.Now().UnixMilli(),
	}
	n.publish(fmt.Sprintf("%s/failures", n.prefix), msg)
}

// NotifyRetryEscalation publishes exhausted orders for manual handling.
func (n *Notifier) NotifyRetryEscalation(o model.Order) {
	msg := struct {
		OrderID   string `json:"order_id"`
		Priority  string `json:"priority"`
		Timestamp int64  `json:"timestamp"`
	}{
		OrderID:   o.ID,
		Priority:  o.Priority.String(),
		Timestamp: time.Now().UnixMilli(),
	}
	n.publish(fmt.Sprintf("%s/escalations", n.prefix), msg)
}

func (n *Notifier) publish(topic string, msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		n.log.Errorf("encode %s: %v", topic, err)
		return
	}
	token := n.cli.Publish(topic, n.qos, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		n.log.Errorf("publish %s: %v", topic, err)
		return
	}
	n.log.Debugf("published %s", topic)
}

// Disconnect gracefully closes the MQTT connection.
func (n *Notifier) Disconnect() {
	if n.cli != nil && n.cli.IsConnected() {
		n.cli.Disconnect(250)
	}
}
