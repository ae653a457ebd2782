package config

import (
	"bytes"
	"strings"

	"github.com/fatih/structs"
	"github.com/jeremywohl/flatten"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ParseConfig loads config.yaml from the first of configFilePaths that has one.
// It just forwards to ParseConfigWithEmbedded with nil.
func ParseConfig[T interface{}](configFilePaths []string) (*T, error) {
	return ParseConfigWithEmbedded[T](configFilePaths, nil)
}

// ParseConfigWithEmbedded tries to load config from disk,
// and if the file is NOT found, falls back to embeddedYAML (if provided).
func ParseConfigWithEmbedded[T interface{}](configFilePaths []string, embeddedYAML []byte) (*T, error) {
	v := viper.New()
	for _, p := range configFilePaths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := prepare[T](v, embeddedYAML); err != nil {
		return nil, err
	}

	err := v.MergeInConfig()
	if err != nil {
		var nfErr viper.ConfigFileNotFoundError
		if !errors.As(err, &nfErr) || len(embeddedYAML) == 0 {
			return nil, err
		}
	}
	return decode[T](v)
}

// ParseFile loads exactly the file at path on top of embeddedYAML. Unlike
// ParseConfigWithEmbedded a missing file is an error.
func ParseFile[T interface{}](path string, embeddedYAML []byte) (*T, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := prepare[T](v, embeddedYAML); err != nil {
		return nil, err
	}
	if err := v.MergeInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}
	return decode[T](v)
}

func prepare[T interface{}](v *viper.Viper, embeddedYAML []byte) error {
	if err := bindAllConfigKeys[T](v); err != nil {
		return err
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// embedded defaults go in first so a file on disk only has to override
	if len(embeddedYAML) > 0 {
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewReader(embeddedYAML)); err != nil {
			return errors.Wrap(err, "failed to load embedded default config")
		}
	}
	return nil
}

func decode[T interface{}](v *viper.Viper) (*T, error) {
	var c *T
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "Unable to decode into struct")
	}
	if c == nil {
		c = new(T)
	}
	return c, nil
}

// Workaround for major viper issue with env variables, documented here
// https://github.com/spf13/viper/issues/761
func bindAllConfigKeys[T interface{}](v *viper.Viper) error {
	var cd T
	// Transform config struct to map
	confMap := structs.Map(cd)

	// Flatten nested conf map
	flat, err := flatten.Flatten(confMap, "", flatten.DotStyle)
	if err != nil {
		return errors.Wrap(err, "Unable to flatten config")
	}

	// Bind each conf field to environment vars
	for key := range flat {
		if err := v.BindEnv(key); err != nil {
			return errors.Wrapf(err, "Unable to bind env var: %s", key)
		}
	}
	return nil
}
