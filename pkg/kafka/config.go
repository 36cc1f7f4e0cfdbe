package kafka

import (
	"crypto/tls"

	kafkago "github.com/segmentio/kafka-go"
)

// Config holds Kafka connection parameters.
type Config struct {
	Brokers       []string
	ConsumerGroup string
	ClientID      string
	TLS           bool
}

func (c Config) dialer() *kafkago.Dialer {
	d := &kafkago.Dialer{ClientID: c.ClientID, DualStack: true}
	if c.TLS {
		d.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return d
}

func (c Config) transport() *kafkago.Transport {
	t := &kafkago.Transport{ClientID: c.ClientID}
	if c.TLS {
		t.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return t
}
