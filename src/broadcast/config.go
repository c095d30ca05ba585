package broadcast

import "time"

// Config holds the flood-control limits of the Broadcaster.
type Config struct {
	BroadcastInterval time.Duration `mapstructure:"broadcast-interval"`
	BroadcastLimit    int           `mapstructure:"broadcast-limit"`
	ParallelLimit     int           `mapstructure:"parallel-limit"`
	ReleaseLimit      int           `mapstructure:"release-limit"`
	RelayLimit        int           `mapstructure:"relay-limit"`
	PeerLimit         int           `mapstructure:"max-peers"`
}

// DefaultConfig ...
func DefaultConfig() Config {
	return Config{
		BroadcastInterval: 5 * time.Second,
		BroadcastLimit:    20,
		ParallelLimit:     20,
		ReleaseLimit:      25,
		RelayLimit:        3,
		PeerLimit:         100,
	}
}
