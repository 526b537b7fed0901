package config

import (
	"encoding/json"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"
)

type MywireConfig struct {
	LogLevel    string `json:"log_level" toml:"log_level" yaml:"log_level"`
	LogFileName string `json:"log_file" toml:"log_file" yaml:"log_file"`

	Host     string `json:"host" toml:"host" yaml:"host"`
	Port     int    `json:"port" toml:"port" yaml:"port"`
	User     string `json:"user" toml:"user" yaml:"user"`
	Password string `json:"-" toml:"password" yaml:"password"`
	Database string `json:"database" toml:"database" yaml:"database"`

	CharsetID byte `json:"charset_id" toml:"charset_id" yaml:"charset_id"`

	ConnectTimeoutSec int `json:"connect_timeout_sec" toml:"connect_timeout_sec" yaml:"connect_timeout_sec"`
	KeepAliveSec      int `json:"keep_alive_sec" toml:"keep_alive_sec" yaml:"keep_alive_sec"`
}

const (
	DefaultPort           = 3306
	DefaultCharsetID      = 45 // utf8mb4_general_ci
	DefaultConnectTimeout = 10 * time.Second
	DefaultKeepAlive      = 30 * time.Second
)

func (c *MywireConfig) Addr() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

func (c *MywireConfig) Charset() byte {
	if c.CharsetID == 0 {
		return DefaultCharsetID
	}
	return c.CharsetID
}

func (c *MywireConfig) ConnectTimeout() time.Duration {
	if c.ConnectTimeoutSec == 0 {
		return DefaultConnectTimeout
	}
	return time.Duration(c.ConnectTimeoutSec) * time.Second
}

func (c *MywireConfig) KeepAlive() time.Duration {
	if c.KeepAliveSec == 0 {
		return DefaultKeepAlive
	}
	return time.Duration(c.KeepAliveSec) * time.Second
}

var cfg MywireConfig

// Load reads the config from cfgPath, picking the decoder by file extension
// (toml or yaml).
func Load(cfgPath string) error {
	if filepath.Ext(cfgPath) == ".toml" {
		if _, err := toml.DecodeFile(cfgPath, &cfg); err != nil {
			return err
		}
	} else {
		file, err := os.Open(cfgPath)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return err
		}
	}

	configBytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	log.Println("Running config:", string(configBytes))
	return nil
}

func Get() *MywireConfig {
	return &cfg
}
