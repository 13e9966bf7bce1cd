package datasets

import (
	"io"
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Config groups the configuration of both datasets, as read from a YAML
// file. Both sections start from their defaults, so a file only needs the
// fields it changes:
//
//	triplet:
//	  root: /data/grip
//	  width: 160
//	  height: 120
//	  augment:
//	    random_crop: {width: 140, height: 100}
//	goal:
//	  root: /data/replay
//	  replay_shards: 4
//	  crop: {top: 10, bottom: 10}
type Config struct {
	Triplet TripletConfig `yaml:"triplet"`
	Goal    GoalConfig    `yaml:"goal"`
}

// DefaultConfig returns DefaultTripletConfig and DefaultGoalConfig with no root.
func DefaultConfig() Config {
	return Config{
		Triplet: DefaultTripletConfig(""),
		Goal:    DefaultGoalConfig(""),
	}
}

// LoadConfig reads the YAML file at path over DefaultConfig. Unknown fields
// are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(err, "opening config")
	}
	defer f.Close()
	if err := DecodeConfig(f, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing %s", path)
	}
	return cfg, nil
}

// DecodeConfig decodes YAML from r over the values already in cfg.
func DecodeConfig(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.SetStrict(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}
