/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/assist-lab/go-sap/pkg/layers"
)

// SourceConfig describes where raw frames come from: the UDP endpoint the
// sensor front end bridge sends 32-byte captures to.
type SourceConfig struct {
	Address string `yaml:"address,omitempty"`
	Port    string `yaml:"port,omitempty"`
}

type Config struct {
	*SourceConfig `yaml:"source,omitempty"`
	// IP is the address the API server binds to
	IP       string `yaml:"ip,omitempty"`
	LogLevel string `yaml:"loglevel,omitempty"`
	// Expect names the packet type the decoder should search for. Empty
	// means search for all headers. SAP_ALL and SAP_DOUBLE share a header
	// value, so a deployment using either of those must set this field to
	// get deterministic decoding.
	Expect   string `yaml:"expect,omitempty"`
	filepath string
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(&c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	err = os.WriteFile(c.filepath, data, 0644)
	if err != nil {
		return err
	}

	return nil
}

func (c *Config) Load() error {
	data, err := os.ReadFile(c.filepath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// ExpectedType resolves the Expect field against the packet catalog.
func (c *Config) ExpectedType() (layers.PacketType, error) {
	return layers.PacketTypeByName(c.Expect)
}

// DBPath returns the location of the bbolt state database.
func (c *Config) DBPath() string {
	return filepath.Join(filepath.Dir(c.filepath), StateFile)
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		SourceConfig: &SourceConfig{
			Address: DefaultSourceAddress,
			Port:    DefaultSourcePort,
		},
		IP:       DefaultIP,
		LogLevel: DefaultLogLevel,
		filepath: DefaultConfigPath(),
	}
}

// NewConfigAt is like NewDefaultConfig but stores state under dir. Used in
// tests and when running several instances side by side.
func NewConfigAt(dir string) *Config {
	cfg := NewDefaultConfig()
	cfg.filepath = filepath.Join(dir, ConfigFile)
	return cfg
}
