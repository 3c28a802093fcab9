// Package certs loads the optional TLS key pair served by authflow.
package certs

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrNoCertificate is returned when a PEM file holds no certificate block.
var ErrNoCertificate = errors.New("failed to parse certificate PEM")

// CertManager holds the paths of a certificate and its private key.
type CertManager struct {
	certPath string
	keyPath  string
	now      func() time.Time
}

// NewCertManager creates a CertManager for the given PEM files.
func NewCertManager(certPath, keyPath string) *CertManager {
	return &CertManager{certPath: certPath, keyPath: keyPath, now: time.Now}
}

// Enabled reports whether both files are configured.
func (cm *CertManager) Enabled() bool {
	return cm.certPath != "" && cm.keyPath != ""
}

// Check validates the configuration: both paths or neither, and existing files.
func (cm *CertManager) Check() error {
	if (cm.certPath == "") != (cm.keyPath == "") {
		return errors.New("tls_cert and tls_key must be provided together, or neither")
	}
	for _, p := range []string{cm.certPath, cm.keyPath} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("tls file %s: %w", p, err)
		}
	}
	return nil
}

// TLSConfig loads the key pair into a server TLS configuration and returns
// the leaf certificate alongside it.
func (cm *CertManager) TLSConfig() (*tls.Config, *x509.Certificate, error) {
	pair, err := tls.LoadX509KeyPair(cm.certPath, cm.keyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load key pair: %w", err)
	}
	leaf, err := cm.LoadCertificate()
	if err != nil {
		return nil, nil, err
	}
	pair.Leaf = leaf
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{pair},
	}, leaf, nil
}

// LoadCertificate parses the first certificate in the cert file.
func (cm *CertManager) LoadCertificate() (*x509.Certificate, error) {
	data, err := os.ReadFile(cm.certPath)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, ErrNoCertificate
	}
	return x509.ParseCertificate(block.Bytes)
}

// IsExpired checks if a certificate is expired.
func (cm *CertManager) IsExpired(cert *x509.Certificate) bool {
	return cert.NotAfter.Before(cm.now())
}

// ExpiresWithin reports whether cert expires inside d.
func (cm *CertManager) ExpiresWithin(cert *x509.Certificate, d time.Duration) bool {
	return cert.NotAfter.Before(cm.now().Add(d))
}
