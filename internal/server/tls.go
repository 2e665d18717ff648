package server

import (
	"crypto/tls"
	"fmt"
)

// LoadTLSConfig loads the server keypair and returns a config that asks every
// client for a certificate but accepts any certificate, or none. Trust is
// decided after the handshake from the certificate fingerprint.
func LoadTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}
	return NewTLSConfig(cert), nil
}

// NewTLSConfig returns the server TLS config for an in-memory keypair
func NewTLSConfig(cert tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		// RequestClientCert never verifies the chain, so self-signed client
		// certificates are accepted
		ClientAuth: tls.RequestClientCert,
	}
}
