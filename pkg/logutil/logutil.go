// Copyright 2021 Matrix Origin
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
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapSink pairs an encoder with the syncer it writes to.
type ZapSink struct {
	enc zapcore.Encoder
	out zapcore.WriteSyncer
}

type logHolder struct {
	logger *zap.Logger
	level  zap.AtomicLevel
	config LogConfig
}

var gLogger atomic.Value

func init() {
	SetupLogger(&LogConfig{})
}

// SetupLogger replaces the global logger. A config Adjust rejects, or a
// log file path that is a directory, panics.
func SetupLogger(conf *LogConfig) {
	cfg := *conf
	if err := cfg.Adjust(); err != nil {
		panic(err)
	}
	level := cfg.getLevel()
	core := zapcore.NewTee(newCores(&cfg, level)...)
	logger := zap.New(core, cfg.getOptions()...)
	replaceGlobalLogger(logger, level, cfg)
}

func newCores(cfg *LogConfig, level zap.AtomicLevel) []zapcore.Core {
	sinks := cfg.getSinks()
	cores := make([]zapcore.Core, 0, len(sinks))
	for _, sink := range sinks {
		cores = append(cores, zapcore.NewCore(sink.enc, sink.out, level))
	}
	return cores
}

func (cfg *LogConfig) getSinks() []ZapSink {
	return []ZapSink{{cfg.getEncoder(), cfg.getSyncer()}}
}

func replaceGlobalLogger(logger *zap.Logger, level zap.AtomicLevel, cfg LogConfig) {
	gLogger.Store(&logHolder{logger: logger, level: level, config: cfg})
}

// SetGlobalLogger installs an already built logger, typically a zaptest
// observer in tests. The previous logger is returned.
func SetGlobalLogger(logger *zap.Logger) *zap.Logger {
	prev := GetGlobalLogger()
	h := gLogger.Load().(*logHolder)
	replaceGlobalLogger(logger, h.level, h.config)
	return prev
}

func GetGlobalLogger() *zap.Logger {
	return gLogger.Load().(*logHolder).logger
}

// GetSkip1Logger skips one extra caller frame, for helpers that log on
// behalf of their caller.
func GetSkip1Logger() *zap.Logger {
	return GetGlobalLogger().WithOptions(zap.AddCallerSkip(1))
}

func getGlobalLogConfig() LogConfig {
	return gLogger.Load().(*logHolder).config
}

// SetLevel changes the level of the logger built by SetupLogger in place.
func SetLevel(l zapcore.Level) {
	gLogger.Load().(*logHolder).level.SetLevel(l)
}

func Enabled(l zapcore.Level) bool {
	return GetGlobalLogger().Core().Enabled(l)
}

func Sync() error {
	return GetGlobalLogger().Sync()
}
