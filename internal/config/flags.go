package config

import "flag"

// Flags holds the command-line overrides shared by xkttool commands.
type Flags struct {
	Config              string
	Debug               bool
	Globalize           bool
	ExcludeUnclassified bool
	Workers             int
	ForceBatch          string
}

// RegisterFlags binds the shared flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.Globalize, "globalize", false, "Prefix entity ids with the model id")
	fs.BoolVar(&f.ExcludeUnclassified, "exclude-unclassified", false, "Skip entities without metadata")
	fs.IntVar(&f.Workers, "workers", 0, "Parallel element inflation workers")
	fs.StringVar(&f.ForceBatch, "force-batch", "", "Force-batch policy: never, always or threshold")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Globalize {
		cfg.Loader.GlobalizeIDs = true
	}
	if f.ExcludeUnclassified {
		cfg.Loader.ExcludeUnclassified = true
	}
	if f.Workers > 0 {
		cfg.Loader.Workers = f.Workers
	}
	if f.ForceBatch != "" {
		cfg.Loader.ForceBatch = f.ForceBatch
	}
}
