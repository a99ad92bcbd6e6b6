package carve

import (
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/esimov/carve/utils"
	"github.com/pkg/errors"
)

// Config holds the resize options which can be preset in a TOML file, e.g.
//
//	width = 640
//	height = 480
//	percentage = false
//	workers = 4
//	debug = true
//	seam_color = "#00ff00"
type Config struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Percentage bool   `toml:"percentage"`
	Workers    int    `toml:"workers"`
	Fit        bool   `toml:"fit"`
	Debug      bool   `toml:"debug"`
	SeamColor  string `toml:"seam_color"`
}

// DefaultConfig returns the configuration used when no preset file is given.
func DefaultConfig() Config {
	return Config{
		Workers:   runtime.NumCPU(),
		SeamColor: DefaultSeamColor,
	}
}

// LoadConfig decodes a TOML preset file on top of the default configuration.
// Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrapf(err, "decode config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

// Validate checks the configuration for values the processor cannot work with.
func (c Config) Validate() error {
	if c.Width < 0 || c.Height < 0 {
		return errors.Errorf("invalid target size %dx%d", c.Width, c.Height)
	}
	if c.Width == 0 && c.Height == 0 {
		return errors.New("please provide a width or a height for image rescaling")
	}
	if c.Percentage && (c.Width > 100 || c.Height > 100) {
		return errors.New("percentage values should be between 1 and 100")
	}
	if c.Workers < 0 {
		return errors.Errorf("invalid number of workers %d", c.Workers)
	}
	if _, err := utils.HexToNRGBA(c.SeamColor); c.Debug && err != nil {
		return err
	}
	return nil
}

// Processor builds a processor from the configuration.
func (c Config) Processor() *Processor {
	return &Processor{
		NewWidth:   c.Width,
		NewHeight:  c.Height,
		Percentage: c.Percentage,
		Workers:    c.Workers,
		Fit:        c.Fit,
		Debug:      c.Debug,
		SeamColor:  c.SeamColor,
	}
}
