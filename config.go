package gss

// Config provides a RegistryConfig with default settings.
var Config = NewConfig()

// RegistryConfig is used by a registry when creating its slot tables.
// Please see the documentation at https://github.com/replay/go-generic-slab-store
// for more information
type RegistryConfig struct {
	// InitialSlots is the capacity reserved for a slot table when it is
	// created. Tables still grow past it on demand.
	InitialSlots int

	// CheckGenerations turns on validation of the generation stamp carried
	// by every handle. Without it stale handles read and write whatever
	// currently lives in their slot.
	CheckGenerations bool

	// ParallelSearchThreshold is the table length from which Search and
	// SearchBatched split the scan over GOMAXPROCS goroutines.
	ParallelSearchThreshold int

	Logger  *Logger
	Metrics MetricsCollector
}

// NewConfig returns a new registry configuration with
// default settings. Generation checking defaults to off unless the
// module is built with the gss_checked tag.
func NewConfig() RegistryConfig {
	return RegistryConfig{
		InitialSlots:            25,
		CheckGenerations:        defaultCheckGenerations,
		ParallelSearchThreshold: 4096,
		Logger:                  NoopLogger(),
		Metrics:                 NoopMetricsCollector{},
	}
}

// withDefaults fills in the zero fields of c.
func (c RegistryConfig) withDefaults() RegistryConfig {
	if c.InitialSlots < 0 {
		c.InitialSlots = 0
	}
	if c.ParallelSearchThreshold <= 0 {
		c.ParallelSearchThreshold = Config.ParallelSearchThreshold
	}
	if c.Logger == nil {
		c.Logger = NoopLogger()
	}
	if c.Metrics == nil {
		c.Metrics = NoopMetricsCollector{}
	}
	return c
}
