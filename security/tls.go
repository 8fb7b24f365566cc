package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/kbukum/routekit/validation"
)

var minVersions = map[string]uint16{
	"1.2": tls.VersionTLS12,
	"1.3": tls.VersionTLS13,
}

// TLSConfig is the file-based TLS configuration. The zero value disables TLS.
type TLSConfig struct {
	CAFile     string `yaml:"ca_file" mapstructure:"ca_file"`
	CertFile   string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile    string `yaml:"key_file" mapstructure:"key_file"`
	ServerName string `yaml:"server_name" mapstructure:"server_name"`
	// SkipVerify disables server certificate checks on the client side.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify"`
	// MinVersion is "1.2" (default) or "1.3".
	MinVersion string `yaml:"min_version" mapstructure:"min_version"`
}

// IsEnabled reports whether any TLS setting is present.
func (c *TLSConfig) IsEnabled() bool {
	return c != nil && (c.CAFile != "" || c.CertFile != "" || c.ServerName != "" || c.SkipVerify)
}

// Validate checks that cert and key come together and the version is known.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	return validation.New().
		Custom((c.CertFile == "") == (c.KeyFile == ""), "tls.cert_file", "cert_file and key_file must be set together").
		OneOf("tls.min_version", c.MinVersion, []string{"1.2", "1.3"}).
		Err()
}

// ClientConfig builds the client-side tls.Config, or nil when TLS is not
// configured.
func (c *TLSConfig) ClientConfig() (*tls.Config, error) {
	if !c.IsEnabled() {
		return nil, nil
	}
	cfg := c.base()
	cfg.InsecureSkipVerify = c.SkipVerify
	cfg.ServerName = c.ServerName

	if c.CAFile != "" {
		pool, err := loadPool(c.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}
	if c.CertFile != "" {
		cert, err := c.keyPair()
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

// ServerConfig builds the server-side tls.Config, or nil when no key pair
// is configured.
func (c *TLSConfig) ServerConfig() (*tls.Config, error) {
	if c == nil || c.CertFile == "" {
		return nil, nil
	}
	cert, err := c.keyPair()
	if err != nil {
		return nil, err
	}
	cfg := c.base()
	cfg.Certificates = []tls.Certificate{cert}
	if c.CAFile != "" {
		pool, err := loadPool(c.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return cfg, nil
}

func (c *TLSConfig) base() *tls.Config {
	v, ok := minVersions[c.MinVersion]
	if !ok {
		v = tls.VersionTLS12
	}
	return &tls.Config{MinVersion: v}
}

func (c *TLSConfig) keyPair() (tls.Certificate, error) {
	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("security: load key pair: %w", err)
	}
	return cert, nil
}

func loadPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("security: read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("security: no certificates in %s", path)
	}
	return pool, nil
}
