package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Comcast/shapes/util"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jsccast/yaml"
	"github.com/pkg/errors"
)

// MQTTConf configures the MQTT coupling.
type MQTTConf struct {
	Broker   string `json:"broker" yaml:"broker"`
	ClientId string `json:"clientId" yaml:"clientId"`
	Username string `json:"username,omitempty" yaml:",omitempty"`
	Password string `json:"password,omitempty" yaml:",omitempty"`

	// Topic is the prefix for subscriptions.  The service
	// subscribes to Topic/+, and the last level of an incoming
	// message's topic names the case to evaluate.
	Topic string `json:"topic" yaml:"topic"`

	QoS       byte          `json:"qos,omitempty" yaml:",omitempty"`
	KeepAlive time.Duration `json:"keepAlive,omitempty" yaml:"keepAlive,omitempty"`
}

// MQTT evaluates cases for messages from an MQTT broker.
//
// The payload of a message published to Topic/NAME is the subject
// for case NAME.  The Reply goes to Topic/NAME/result.
type MQTT struct {
	Conf   *MQTTConf
	Client mqtt.Client

	s *Service
}

// NewMQTT makes (but doesn't start) an MQTT coupling.
func (s *Service) NewMQTT(ctx context.Context, conf *MQTTConf) *MQTT {
	m := &MQTT{
		Conf: conf,
		s:    s,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(conf.Broker)
	opts.SetClientID(conf.ClientId)
	if 0 < conf.KeepAlive {
		opts.SetKeepAlive(conf.KeepAlive)
	}
	opts.SetPingTimeout(10 * time.Second)
	opts.Username = conf.Username
	opts.Password = conf.Password
	opts.AutoReconnect = true

	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		util.Logger.Warn().Err(err).Msg("MQTT connection lost")
	}

	opts.DefaultPublishHandler = func(client mqtt.Client, msg mqtt.Message) {
		m.inHandler(ctx, msg)
	}

	m.Client = mqtt.NewClient(opts)

	return m
}

// Start connects to the broker and subscribes.
func (m *MQTT) Start(ctx context.Context) error {
	util.Logger.Info().Str("broker", m.Conf.Broker).Msg("connecting to MQTT broker")
	if token := m.Client.Connect(); token.Wait() && token.Error() != nil {
		return errors.Wrap(token.Error(), "MQTT connect")
	}

	topic := m.Conf.Topic + "/+"
	if token := m.Client.Subscribe(topic, m.Conf.QoS, nil); token.Wait() && token.Error() != nil {
		return errors.Wrapf(token.Error(), "MQTT subscribe %s", topic)
	}
	util.Logger.Info().Str("topic", topic).Msg("subscribed")

	return nil
}

func (m *MQTT) Stop(ctx context.Context) error {
	m.Client.Disconnect(1000)
	return nil
}

// inHandler is a Paho publish handler, which handles messages sent
// to us due to our subscription.
func (m *MQTT) inHandler(ctx context.Context, msg mqtt.Message) {
	topic, payload := m.handle(ctx, msg.Topic(), msg.Payload())
	if topic == "" {
		return
	}
	token := m.Client.Publish(topic, m.Conf.QoS, false, payload)
	if token.Wait() && token.Error() != nil {
		util.Logger.Warn().Err(token.Error()).Str("topic", topic).Msg("MQTT publish")
	}
}

// handle evaluates the case named by the topic's last level and
// returns the reply topic and payload.
//
// A payload that isn't JSON (or YAML) is used as a string.
func (m *MQTT) handle(ctx context.Context, topic string, payload []byte) (string, []byte) {
	util.Logger.Debug().Str("topic", topic).Bytes("payload", payload).Msg("MQTT incoming")

	if strings.HasSuffix(topic, "/result") {
		return "", nil
	}
	i := strings.LastIndex(topic, "/")
	name := topic[i+1:]
	if name == "" {
		return "", nil
	}

	var subject interface{}
	if err := yaml.Unmarshal(payload, &subject); err != nil {
		subject = string(payload)
	}

	rep := m.s.Do(ctx, &Op{
		Eval: &EvalOp{
			Case:    name,
			Subject: subject,
		},
	})

	js, err := json.Marshal(rep)
	if err != nil {
		util.Logger.Warn().Err(err).Str("topic", topic).Msg("MQTT reply")
		js, _ = json.Marshal(&Reply{Id: rep.Id, Error: err.Error()})
	}

	return topic + "/result", js
}
