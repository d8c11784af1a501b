package config

import "flag"

// Flags are the command-line overrides of the file settings.
type Flags struct {
	fs *flag.FlagSet

	Path     string
	endpoint string
	scale    float64
	level    string
	file     string
}

// BindFlags registers the config flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.Path, "config", "", "YAML config file.")
	fs.StringVar(&f.endpoint, "endpoint", "", "Prediction endpoint URL.")
	fs.Float64Var(&f.scale, "scale", 0, "Device pixel ratio (0 = detect).")
	fs.StringVar(&f.level, "log-level", "", "Log level: debug, info, warn or error.")
	fs.StringVar(&f.file, "log-file", "", "Rotated log file (default stderr).")
	return f
}

// Load reads the config file named by -config and applies every flag that
// was set explicitly. Call it after fs.Parse.
func (f *Flags) Load() (Config, error) {
	cfg, err := Load(f.Path)
	if err != nil {
		return Config{}, err
	}
	f.Apply(&cfg)
	return cfg, nil
}

// Apply copies explicitly set flags onto cfg.
func (f *Flags) Apply(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "endpoint":
			cfg.EndpointURL = f.endpoint
		case "scale":
			cfg.Canvas.Scale = f.scale
		case "log-level":
			cfg.Log.Level = f.level
		case "log-file":
			cfg.Log.File = f.file
		}
	})
}
