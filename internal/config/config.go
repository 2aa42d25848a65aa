/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

// Package config loads the server settings from defaults, an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys of the settings.
const (
	KeyServerAddr               = "server.addr"
	KeyServerMaxBodySize        = "server.max_body_size"
	KeyServerOperationCacheSize = "server.operation_cache_size"
	KeyServerCORSOrigins        = "server.cors_origins"
	KeyStoreURL                 = "store.url"
	KeyStoreTimeout             = "store.timeout"
	KeyLogLevel                 = "log.level"
	KeyLogFormat                = "log.format"
	KeySchemaStatuses           = "schema.statuses"
	KeySchemaDefaultStatus      = "schema.default_status"
	KeyRelationRejectCycles     = "relation.reject_cycles"
	KeyLoaderMaxBatchSize       = "loader.max_batch_size"
)

// EnvPrefix prefixes the environment variables that override settings. The variable for a key is
// the prefix followed by the key in upper case with dots replaced by underscores, such as
// TASKGRAPH_STORE_URL.
const EnvPrefix = "TASKGRAPH"

// legacyStoreURLEnv also sets the store URL.
const legacyStoreURLEnv = "DATASTORE"

const (
	configFileName = "taskgraph"
	configFileType = "yaml"
)

// Settings are the effective settings of the server.
type Settings struct {
	Server   ServerSettings   `mapstructure:"server" json:"server"`
	Store    StoreSettings    `mapstructure:"store" json:"store"`
	Log      LogSettings      `mapstructure:"log" json:"log"`
	Schema   SchemaSettings   `mapstructure:"schema" json:"schema"`
	Relation RelationSettings `mapstructure:"relation" json:"relation"`
	Loader   LoaderSettings   `mapstructure:"loader" json:"loader"`
}

// ServerSettings configure the HTTP server.
type ServerSettings struct {
	Addr               string `mapstructure:"addr" json:"addr"`
	MaxBodySize        uint   `mapstructure:"max_body_size" json:"max_body_size"`
	OperationCacheSize uint   `mapstructure:"operation_cache_size" json:"operation_cache_size"`

	// CORSOrigins lists the browser origins allowed to call /graphql. Empty disables CORS.
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
}

// StoreSettings locate the REST store.
type StoreSettings struct {
	URL     string        `mapstructure:"url" json:"url"`
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
}

// LogSettings configure the logger.
type LogSettings struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// SchemaSettings configure the GraphQL schema.
type SchemaSettings struct {
	Statuses      []string `mapstructure:"statuses" json:"statuses"`
	DefaultStatus string   `mapstructure:"default_status" json:"default_status"`
}

// RelationSettings configure the relationship engine.
type RelationSettings struct {
	RejectCycles bool `mapstructure:"reject_cycles" json:"reject_cycles"`
}

// LoaderSettings configure the request loaders.
type LoaderSettings struct {
	MaxBatchSize uint `mapstructure:"max_batch_size" json:"max_batch_size"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerAddr, ":3999")
	v.SetDefault(KeyServerMaxBodySize, 10<<20)
	v.SetDefault(KeyServerOperationCacheSize, 512)
	v.SetDefault(KeyServerCORSOrigins, []string{"http://localhost:*", "http://127.0.0.1:*"})
	v.SetDefault(KeyStoreURL, "http://localhost:3000")
	v.SetDefault(KeyStoreTimeout, 10*time.Second)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeySchemaStatuses, []string{"PENDING", "ASSIGNED", "IN_PROGRESS", "COMPLETED", "BLOCKED"})
	v.SetDefault(KeySchemaDefaultStatus, "ASSIGNED")
	v.SetDefault(KeyRelationRejectCycles, false)
	v.SetDefault(KeyLoaderMaxBatchSize, 0)
}

// New returns a viper instance with the defaults and the environment bindings applied. If path is
// not empty, it names the config file to read; otherwise taskgraph.yaml is looked up in the
// working directory and a missing file is not an error.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(KeyStoreURL, EnvPrefix+"_STORE_URL", legacyStoreURLEnv); err != nil {
		return nil, fmt.Errorf("bind %s: %w", KeyStoreURL, err)
	}

	if len(path) > 0 {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load reads the settings. See New for the meaning of path.
func Load(path string) (*Settings, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return Decode(v)
}

// Decode extracts the settings from v and validates them.
func Decode(v *viper.Viper) (*Settings, error) {
	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate reports the first invalid setting.
func (s *Settings) Validate() error {
	if len(s.Server.Addr) == 0 {
		return fmt.Errorf("%s must not be empty", KeyServerAddr)
	}
	if s.Server.MaxBodySize == 0 {
		return fmt.Errorf("%s must be positive", KeyServerMaxBodySize)
	}
	if len(s.Store.URL) == 0 {
		return fmt.Errorf("%s must not be empty", KeyStoreURL)
	}
	if s.Store.Timeout < 0 {
		return fmt.Errorf("%s must not be negative", KeyStoreTimeout)
	}
	if len(s.Schema.Statuses) == 0 {
		return fmt.Errorf("%s must list at least one status", KeySchemaStatuses)
	}
	for _, status := range s.Schema.Statuses {
		if status == s.Schema.DefaultStatus {
			return nil
		}
	}
	return fmt.Errorf("%s %q is not one of %s %v",
		KeySchemaDefaultStatus, s.Schema.DefaultStatus, KeySchemaStatuses, s.Schema.Statuses)
}
