package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"example.com/radgate/internal/frame"
)

type streamConfig struct {
	Addr             string `yaml:"addr"`
	ReconnectSeconds int    `yaml:"reconnectSeconds"`
}

type datagramConfig struct {
	Bind       string `yaml:"bind"`
	RemotePort int    `yaml:"remotePort"`
}

type httpConfig struct {
	Port           int `yaml:"port"`
	RecentCapacity int `yaml:"recentCapacity"`
}

type captureConfig struct {
	Path string `yaml:"path"`
}

type logConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

type config struct {
	Stream        streamConfig   `yaml:"stream"`
	Datagram      datagramConfig `yaml:"datagram"`
	HTTP          httpConfig     `yaml:"http"`
	MaxFrameBytes int            `yaml:"maxFrameBytes"`
	Capture       captureConfig  `yaml:"capture"`
	Logs          logConfig      `yaml:"logs"`
}

func (c streamConfig) reconnect() time.Duration {
	return time.Duration(c.ReconnectSeconds) * time.Second
}

func loadConfig(path string) (config, error) {
	var cfg config
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *config) {
	if cfg.Stream.Addr == "" {
		cfg.Stream.Addr = "127.0.0.1:23004"
	}
	if cfg.Stream.ReconnectSeconds <= 0 {
		cfg.Stream.ReconnectSeconds = 5
	}
	if cfg.Datagram.Bind == "" {
		cfg.Datagram.Bind = ":32004"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RecentCapacity <= 0 {
		cfg.HTTP.RecentCapacity = 256
	}
	if cfg.MaxFrameBytes <= 0 {
		cfg.MaxFrameBytes = frame.DefaultMaxFrame
	}
	if cfg.Logs.Directory == "" {
		cfg.Logs.Directory = filepath.Join(".", "logs")
	}
	if cfg.Logs.MaxSizeMB <= 0 {
		cfg.Logs.MaxSizeMB = 25
	}
	if cfg.Logs.MaxAgeDays <= 0 {
		cfg.Logs.MaxAgeDays = 7
	}
	if cfg.Logs.MaxBackups <= 0 {
		cfg.Logs.MaxBackups = 5
	}
}
