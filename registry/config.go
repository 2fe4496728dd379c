// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/SnellerInc/sqltypes/collation"
	"github.com/SnellerInc/sqltypes/keycodec"

	"sigs.k8s.io/yaml"
)

// CollationConfig declares one locale collation.
type CollationConfig struct {
	// Name is the name VARCHAR instances use
	// to refer to the collation.
	Name string `json:"name"`
	// Locale is a BCP 47 language tag.
	Locale  string            `json:"locale"`
	Options collation.Options `json:"options,omitempty"`
}

// Config is the startup configuration
// of a Registry.
type Config struct {
	// MaxKeySegment is the largest encoded
	// size of a single key column.
	MaxKeySegment int `json:"max_key_segment,omitempty"`
	// MaxKeySize is the largest encoded
	// size of a whole key.
	MaxKeySize int `json:"max_key_size,omitempty"`
	// Collations are the collations available
	// in addition to the binary collation.
	Collations []CollationConfig `json:"collations,omitempty"`
}

// DefaultConfig returns the configuration
// used when New is given a nil Config.
func DefaultConfig() *Config {
	return &Config{
		MaxKeySegment: keycodec.DefaultMaxSegment,
		MaxKeySize:    keycodec.DefaultMaxKey,
	}
}

// just pick an upper limit to prevent DoS
const maxConfigSize = 1024 * 1024

func (c *Config) check() error {
	if c.MaxKeySegment < 0 || c.MaxKeySize < 0 {
		return fmt.Errorf("registry: negative key limits")
	}
	if c.MaxKeySegment > 0 && c.MaxKeySize > 0 && c.MaxKeySegment > c.MaxKeySize {
		return fmt.Errorf("registry: max_key_segment %d exceeds max_key_size %d", c.MaxKeySegment, c.MaxKeySize)
	}
	for i := range c.Collations {
		if c.Collations[i].Name == "" {
			return fmt.Errorf("registry: collation %d has no name", i)
		}
	}
	return nil
}

// DecodeConfig decodes a configuration
// from src. Files with a .yaml or .yml
// extension are decoded as YAML; anything
// else is decoded as JSON. Unknown fields
// are rejected.
func DecodeConfig(src io.Reader, ext string) (*Config, error) {
	buf, err := io.ReadAll(io.LimitReader(src, maxConfigSize+1))
	if err != nil {
		return nil, err
	}
	if len(buf) > maxConfigSize {
		return nil, fmt.Errorf("registry: config beyond limit %d", maxConfigSize)
	}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		buf, err = yaml.YAMLToJSON(buf)
		if err != nil {
			return nil, fmt.Errorf("registry: %w", err)
		}
	}
	c := DefaultConfig()
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("registry: decoding config: %w", err)
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return c, nil
}

// OpenConfig calls DecodeConfig on the
// file with the given name in fsys.
func OpenConfig(fsys fs.FS, name string) (*Config, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config of size %d beyond limit %d", info.Size(), maxConfigSize)
	}
	return DecodeConfig(f, path.Ext(name))
}
