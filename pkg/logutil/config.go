// Copyright 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logutil

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matrixorigin/dynarray/pkg/common/moerr"
)

// ParseLogConfig decodes a TOML document into an adjusted LogConfig.
// A malformed document is ErrInvalidInput. Unknown keys and bad values are
// ErrBadConfig, so a typo does not silently fall back to a default.
func ParseLogConfig(data []byte) (*LogConfig, error) {
	cfg := &LogConfig{}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, moerr.NewInvalidInputNoCtx("log config: %v", err)
	}
	return checkDecoded(md, cfg)
}

// LoadLogConfig reads and decodes a TOML file, see ParseLogConfig.
func LoadLogConfig(path string) (*LogConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, moerr.NewBadConfigNoCtx("%s: %v", path, err)
	}
	return ParseLogConfig(data)
}

func checkDecoded(md toml.MetaData, cfg *LogConfig) (*LogConfig, error) {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, moerr.NewBadConfigNoCtx("unknown keys %s", strings.Join(keys, ","))
	}
	if err := cfg.Adjust(); err != nil {
		return nil, err
	}
	return cfg, nil
}
