package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePair(t *testing.T, notAfter time.Time) (string, string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     notAfter,
		DNSNames:     []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certPath, keyPath
}

func TestTLSConfig(t *testing.T) {
	certPath, keyPath := writePair(t, time.Now().Add(10*24*time.Hour))
	cm := NewCertManager(certPath, keyPath)
	require.True(t, cm.Enabled())
	require.NoError(t, cm.Check())

	cfg, leaf, err := cm.TLSConfig()
	require.NoError(t, err)
	assert.Len(t, cfg.Certificates, 1)
	assert.Equal(t, "localhost", leaf.Subject.CommonName)
	assert.False(t, cm.IsExpired(leaf))
	assert.True(t, cm.ExpiresWithin(leaf, 30*24*time.Hour))
	assert.False(t, cm.ExpiresWithin(leaf, 24*time.Hour))
}

func TestCheck(t *testing.T) {
	assert.NoError(t, NewCertManager("", "").Check())
	assert.False(t, NewCertManager("", "").Enabled())
	assert.Error(t, NewCertManager("cert.pem", "").Check())
	assert.Error(t, NewCertManager(filepath.Join(t.TempDir(), "a"), filepath.Join(t.TempDir(), "b")).Check())
}

func TestLoadCertificateRejectsNonPEM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cert.pem")
	require.NoError(t, os.WriteFile(path, []byte("not pem"), 0o600))
	_, err := NewCertManager(path, path).LoadCertificate()
	assert.ErrorIs(t, err, ErrNoCertificate)
}

func TestIsExpired(t *testing.T) {
	certPath, keyPath := writePair(t, time.Now().Add(-time.Minute))
	cm := NewCertManager(certPath, keyPath)
	leaf, err := cm.LoadCertificate()
	require.NoError(t, err)
	assert.True(t, cm.IsExpired(leaf))
}
