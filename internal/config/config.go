// Package config loads server configuration from an optional HCL file,
// layered under the hardcoded defaults and CLI flags of cmd/server.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Server is the complete, resolved server configuration.
type Server struct {
	Listen            ListenSettings `hcl:"listen,block"`
	HeartbeatInterval time.Duration
}

// ListenSettings controls the TCP listener.
type ListenSettings struct {
	Address  string `hcl:"address,optional"`
	Backlog  int    `hcl:"backlog,optional"`
	LogLevel string `hcl:"log_level,optional"`
	// HeartbeatSeconds is read from HCL as a plain integer and converted
	// into Server.HeartbeatInterval after decoding, since gohcl has no
	// native time.Duration support.
	HeartbeatSeconds int `hcl:"heartbeat_seconds,optional"`
}

// Default returns the hardcoded defaults mandated by the wire spec: bind
// 0.0.0.0:9999, backlog 5, a 5 second heartbeat.
func Default() *Server {
	return &Server{
		Listen: ListenSettings{
			Address:          "0.0.0.0:9999",
			Backlog:          5,
			LogLevel:         "info",
			HeartbeatSeconds: 5,
		},
		HeartbeatInterval: 5 * time.Second,
	}
}

// Load reads an HCL config file, falling back to Default if filename does
// not exist. Any field left zero in the file is backfilled from Default.
func Load(filename string) (*Server, error) {
	def := Default()
	if filename == "" {
		return def, nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return def, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parse %s: %s", filename, diags.Error())
	}

	var cfg Server
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: decode %s: %s", filename, diags.Error())
	}

	if cfg.Listen.Address == "" {
		cfg.Listen.Address = def.Listen.Address
	}
	if cfg.Listen.Backlog == 0 {
		cfg.Listen.Backlog = def.Listen.Backlog
	}
	if cfg.Listen.LogLevel == "" {
		cfg.Listen.LogLevel = def.Listen.LogLevel
	}
	if cfg.Listen.HeartbeatSeconds == 0 {
		cfg.Listen.HeartbeatSeconds = def.Listen.HeartbeatSeconds
	}
	cfg.HeartbeatInterval = time.Duration(cfg.Listen.HeartbeatSeconds) * time.Second
	return &cfg, nil
}
