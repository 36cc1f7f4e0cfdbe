// Package tlsutil loads server TLS material shared by the gRPC and HTTP
// listeners.
package tlsutil

import (
	"crypto/tls"
	"errors"
	"fmt"

	"google.golang.org/grpc/credentials"
)

// ErrIncompletePair is returned when only one of cert and key is set.
var ErrIncompletePair = errors.New("tlsutil: cert and key must both be set")

// ServerConfig loads a key pair into a TLS 1.2+ server config. It returns
// nil, nil when both paths are empty so callers can serve plaintext.
func ServerConfig(certFile, keyFile string) (*tls.Config, error) {
	if certFile == "" && keyFile == "" {
		return nil, nil
	}
	if certFile == "" || keyFile == "" {
		return nil, ErrIncompletePair
	}
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: load server key pair: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// GRPCCredentials wraps cfg for grpc.Creds. A nil cfg yields nil.
func GRPCCredentials(cfg *tls.Config) credentials.TransportCredentials {
	if cfg == nil {
		return nil
	}
	return credentials.NewTLS(cfg)
}
