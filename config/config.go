// Package config reads the chaincode process settings from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/hyperledger/fabric-chaincode-go/shim"
)

// Chaincode holds the process configuration. When ServerAddress and ID are
// both set the chaincode runs as an external service; otherwise the peer
// launches it.
type Chaincode struct {
	ServerAddress string `env:"CHAINCODE_SERVER_ADDRESS"`
	ID            string `env:"CHAINCODE_ID"`
	TLSDisabled   bool   `env:"CHAINCODE_TLS_DISABLED" envDefault:"true"`
	TLSKeyFile    string `env:"CHAINCODE_TLS_KEY"`
	TLSCertFile   string `env:"CHAINCODE_TLS_CERT"`
	ClientCAFile  string `env:"CHAINCODE_CLIENT_CA_CERT"`
	MetricsAddr   string `env:"METRICS_ADDRESS"`
	LogSpec       string `env:"CHAINCODE_LOG_SPEC" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates the chaincode configuration.
func Load() (Chaincode, error) {
	var cfg Chaincode
	if err := ParseEnv(&cfg); err != nil {
		return Chaincode{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Chaincode{}, err
	}
	return cfg, nil
}

// Validate checks that the external-service settings are complete.
func (c Chaincode) Validate() error {
	if (c.ServerAddress == "") != (c.ID == "") {
		return fmt.Errorf("CHAINCODE_SERVER_ADDRESS and CHAINCODE_ID must be set together")
	}
	if c.IsExternalService() && !c.TLSDisabled && (c.TLSKeyFile == "" || c.TLSCertFile == "") {
		return fmt.Errorf("CHAINCODE_TLS_KEY and CHAINCODE_TLS_CERT are required when TLS is enabled")
	}
	return nil
}

// IsExternalService reports whether the chaincode should run its own server.
func (c Chaincode) IsExternalService() bool {
	return c.ServerAddress != "" && c.ID != ""
}

// TLSProperties loads the key material named by the configuration.
func (c Chaincode) TLSProperties() (shim.TLSProperties, error) {
	props := shim.TLSProperties{Disabled: c.TLSDisabled}
	if c.TLSDisabled {
		return props, nil
	}
	var err error
	if props.Key, err = readFile("CHAINCODE_TLS_KEY", c.TLSKeyFile); err != nil {
		return shim.TLSProperties{}, err
	}
	if props.Cert, err = readFile("CHAINCODE_TLS_CERT", c.TLSCertFile); err != nil {
		return shim.TLSProperties{}, err
	}
	if c.ClientCAFile != "" {
		if props.ClientCACerts, err = readFile("CHAINCODE_CLIENT_CA_CERT", c.ClientCAFile); err != nil {
			return shim.TLSProperties{}, err
		}
	}
	return props, nil
}

func readFile(name, path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s '%s': %w", name, path, err)
	}
	return b, nil
}
