/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package config loads the peer and daemon configuration via viper (the
// cmd/ packages overlay their cobra flag values on the result) and
// validates it with validator/v10 — the same trio the
// teacher wires together in config/ and cobra/, scoped down to the fields
// spec.md §6's Boot Interface and the daemon/manager pair actually need.
package config

import (
	"strings"

	libval "github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pseudonym/chordring/errors"
)

// Peer is the Boot Interface object from spec.md §6: a process manager
// hands a peer its listen address, its two inherited sockets (or, run
// standalone, no inherited descriptors at all), and an optional bootstrap
// peer. ListenSockFD and DgramSockFD are 0 (not -1) when absent, since an
// inherited fd of 0 would collide with stdin and a real manager never
// hands that one down.
type Peer struct {
	ListenAddr   string `mapstructure:"listen_addr" validate:"required,hostname_port"`
	ListenSockFD int    `mapstructure:"listen_sock" validate:"gte=0"`
	DgramSockFD  int    `mapstructure:"dgram_socket" validate:"gte=0"`
	BootPeer     string `mapstructure:"boot_peer" validate:"omitempty,hostname_port"`

	LogLevel  string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"omitempty,oneof=text json"`

	// DaemonAddr, when set, puts the peer in managed mode (cmd/chordpeer
	// --daemon): it dials ctrl/daemon and speaks HELLO/STARTED/STOPPED
	// instead of bootstrapping on its own.
	DaemonAddr string `mapstructure:"daemon_addr" validate:"omitempty,hostname_port"`

	// Timer overrides exist for tests that cannot wait 10-15 real
	// seconds per stabilization round; zero means "use the package
	// default" (spec.md §4.D intervals).
	StabilizeIntervalMS int `mapstructure:"stabilize_interval_ms" validate:"gte=0"`
	FixFingerIntervalMS int `mapstructure:"fix_finger_interval_ms" validate:"gte=0"`
	BackupIntervalMS    int `mapstructure:"backup_interval_ms" validate:"gte=0"`
	PingIntervalMS      int `mapstructure:"ping_interval_ms" validate:"gte=0"`
}

// HasInheritedSockets reports whether the boot interface handed this
// process already-open file descriptors rather than expecting it to call
// net.Listen/net.ListenPacket itself.
func (p *Peer) HasInheritedSockets() bool {
	return p.ListenSockFD != 0 && p.DgramSockFD != 0
}

// Daemon is ctrl/daemon's own configuration: the address it listens on
// for peer and operator connections, and the revive command it Popen()s
// in daemon.py's place.
type Daemon struct {
	ListenAddr    string   `mapstructure:"listen_addr" validate:"required,hostname_port"`
	ReviveCommand []string `mapstructure:"revive_command" validate:"required,min=1"`
	LogLevel      string   `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// LogFormat "hclog" switches to the hashicorp/go-hclog backend, the
	// leveled-logging convention a process supervisor spawning chordd
	// typically expects; anything else uses the default logrus backend.
	LogFormat string `mapstructure:"log_format" validate:"omitempty,oneof=text hclog"`
}

// Validate runs validator/v10 against the struct tags above, translating
// field-level failures into a single errors.Error the way the teacher's
// Config.Validate methods do (certificates/config.go, config/components/*).
func Validate(v interface{}) errors.Error {
	if err := libval.New().Struct(v); err != nil {
		if ve, ok := err.(libval.ValidationErrors); ok {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fe.StructNamespace()+" fails '"+fe.ActualTag()+"'")
			}
			return errors.ErrConfigInvalid.Error(newStringsError(msgs))
		}
		return errors.ErrConfigInvalid.Error(err)
	}
	return nil
}

type stringsError struct{ msgs []string }

func newStringsError(msgs []string) error { return &stringsError{msgs: msgs} }
func (e *stringsError) Error() string     { return strings.Join(e.msgs, "; ") }

// LoadPeer reads peer configuration from the given file (if non-empty),
// environment variables prefixed CHORDRING_, and defaults. It does not
// validate: cmd/chordpeer merges CLI flags (--listen, --bootstrap, ...)
// on top of the result before calling Validate, since a file is optional
// and required fields like listen_addr are commonly supplied as flags
// instead.
func LoadPeer(path string) (*Peer, errors.Error) {
	v := newViper("CHORDRING")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.ErrConfigInvalid.Error(err)
		}
	}

	p := &Peer{}
	if err := v.Unmarshal(p); err != nil {
		return nil, errors.ErrConfigInvalid.Error(err)
	}
	return p, nil
}

// LoadDaemon is LoadPeer's counterpart for ctrl/daemon.
func LoadDaemon(path string) (*Daemon, errors.Error) {
	v := newViper("CHORDD")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("revive_command", []string{"./deliver.sh"})
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.ErrConfigInvalid.Error(err)
		}
	}

	d := &Daemon{}
	if err := v.Unmarshal(d); err != nil {
		return nil, errors.ErrConfigInvalid.Error(err)
	}
	return d, nil
}

func newViper(envPrefix string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}
