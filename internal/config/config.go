// Package config loads the yaml configuration of the command line client and
// turns it into the options of a connection attempt.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/frankli0324/go-wsdial/internal/log"
	"github.com/frankli0324/go-wsdial/internal/model"
)

type Config struct {
	URL       string            `yaml:"url"`
	Headers   map[string]string `yaml:"headers"`
	Proxy     string            `yaml:"proxy"` // proxy url, or "env" to follow HTTP(S)_PROXY
	TLS       TLSConfig         `yaml:"tls"`
	WebSocket WebSocketConfig   `yaml:"websocket"`
	Dial      DialConfig        `yaml:"dial"`
	Log       log.Config        `yaml:"log"`
	Retries   int               `yaml:"retries"`
}

type TLSConfig struct {
	Engine             string   `yaml:"engine"` // stdlib, utls
	Parrot             string   `yaml:"parrot"` // utls fingerprint, implies engine utls
	CAFile             string   `yaml:"ca_file"`
	InsecureSkipVerify bool     `yaml:"insecure_skip_verify"`
	ALPN               []string `yaml:"alpn"`
	MinVersion         string   `yaml:"min_version"` // 1.0 to 1.3
}

type WebSocketConfig struct {
	ReadBufferSize  int      `yaml:"read_buffer_size"`
	WriteBufferSize int      `yaml:"write_buffer_size"`
	MaxMessageSize  int64    `yaml:"max_message_size"`
	Subprotocols    []string `yaml:"subprotocols"`
	Compression     bool     `yaml:"compression"`
}

type DialConfig struct {
	Mark      int    `yaml:"mark"`      // SO_MARK, linux only
	Interface string `yaml:"interface"` // SO_BINDTODEVICE, linux only
}

func Default() *Config {
	return &Config{
		Log: log.Config{Level: "info", Format: "text"},
	}
}

// Load reads the file at path over the defaults. unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Request() *model.Request {
	header := make(http.Header, len(c.Headers))
	for k, v := range c.Headers {
		header.Add(k, v)
	}
	return model.NewRequest(c.URL, header)
}
