package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mosaicnetworks/courier/src/broadcast"
	"github.com/mosaicnetworks/courier/src/common"
	"github.com/mosaicnetworks/courier/src/version"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultBadgerFile is the default name of the folder containing the Badger
	// database
	DefaultBadgerFile = "badger_db"

	// DefaultConfigFile is the name, without extension, of the optional
	// configuration file in the data directory.
	DefaultConfigFile = "courier"
)

// Transports.
const (
	TCPTransport  = "tcp"
	WAMPTransport = "wamp"
)

// Default configuration values.
const (
	DefaultLogLevel          = "debug"
	DefaultBindAddr          = "127.0.0.1:7000"
	DefaultTransport         = TCPTransport
	DefaultWAMPRealm         = "courier"
	DefaultMaxPool           = 2
	DefaultTCPTimeout        = 1000 * time.Millisecond
	DefaultMaxConnsPerIP     = 16
	DefaultMaxPeers          = 100
	DefaultRelayLimit        = 3
	DefaultBroadcastInterval = 5 * time.Second
	DefaultBroadcastLimit    = 20
	DefaultParallelLimit     = 20
	DefaultReleaseLimit      = 25
	DefaultMaxSharedTxs      = 100
	DefaultBlocksLimit       = 34
	DefaultSequenceWarning   = 50
	DefaultStore             = false
	DefaultStandalone        = false
)

// Config contains all the configuration properties of a courier node.
type Config struct {
	// DataDir is the top-level directory containing the configuration and
	// data of the node.
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile, when set, receives a copy of every log line.
	LogFile string `mapstructure:"log-file"`

	// BindAddr is the local address:port where the node listens for peers.
	BindAddr string `mapstructure:"listen"`

	// AdvertiseAddr is the address other peers should use to reach us, when
	// BindAddr is not routable.
	AdvertiseAddr string `mapstructure:"advertise"`

	// Transport is either "tcp" or "wamp".
	Transport string `mapstructure:"transport"`

	// WAMPRealm is the realm the WAMP transport registers its procedures in.
	WAMPRealm string `mapstructure:"wamp-realm"`

	// MaxPool controls how many connections are pooled per target.
	MaxPool int `mapstructure:"max-pool"`

	// TCPTimeout is the timeout of RPC round trips.
	TCPTimeout time.Duration `mapstructure:"timeout"`

	// MaxConnsPerIP caps the inbound connections accepted from one address.
	// Zero disables the limit.
	MaxConnsPerIP int `mapstructure:"max-conns-per-ip"`

	// AuthKey is the shared secret guarding internal procedures.
	AuthKey string `mapstructure:"auth-key"`

	// Nonce identifies this node among its peers. Peers announcing the same
	// nonce are refused.
	Nonce string `mapstructure:"nonce"`

	// Version is the application version announced to peers.
	Version string `mapstructure:"version"`

	// MaxPeers is the number of peers a block is broadcast to.
	MaxPeers int `mapstructure:"max-peers"`

	// RelayLimit is how many times an item may be relayed.
	RelayLimit int `mapstructure:"relay-limit"`

	// BroadcastInterval is the period of queue releases.
	BroadcastInterval time.Duration `mapstructure:"broadcast-interval"`

	// BroadcastLimit is the number of peers a release is sent to.
	BroadcastLimit int `mapstructure:"broadcast-limit"`

	// ParallelLimit is the number of concurrent sends of a broadcast.
	ParallelLimit int `mapstructure:"parallel-limit"`

	// ReleaseLimit is the number of items in a squashed batch.
	ReleaseLimit int `mapstructure:"release-limit"`

	// MaxSharedTxs caps the transactions and signatures exchanged in one
	// message.
	MaxSharedTxs int `mapstructure:"max-shared-txs"`

	// BlocksLimit caps the blocks returned by the blocks procedure.
	BlocksLimit int `mapstructure:"blocks-limit"`

	// Store activates persistent block storage.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	// SequenceWarning is the pending task count above which the balance
	// sequence logs a warning.
	SequenceWarning int `mapstructure:"sequence-warning"`

	// Standalone starts the node without seed peers. peers.json is ignored.
	Standalone bool `mapstructure:"standalone"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values. The nonce and
// the auth key are fresh random values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:           DefaultDataDir(),
		LogLevel:          DefaultLogLevel,
		BindAddr:          DefaultBindAddr,
		Transport:         DefaultTransport,
		WAMPRealm:         DefaultWAMPRealm,
		MaxPool:           DefaultMaxPool,
		TCPTimeout:        DefaultTCPTimeout,
		MaxConnsPerIP:     DefaultMaxConnsPerIP,
		AuthKey:           uuid.New().String(),
		Nonce:             NewNonce(),
		Version:           version.Version,
		MaxPeers:          DefaultMaxPeers,
		RelayLimit:        DefaultRelayLimit,
		BroadcastInterval: DefaultBroadcastInterval,
		BroadcastLimit:    DefaultBroadcastLimit,
		ParallelLimit:     DefaultParallelLimit,
		ReleaseLimit:      DefaultReleaseLimit,
		MaxSharedTxs:      DefaultMaxSharedTxs,
		BlocksLimit:       DefaultBlocksLimit,
		Store:             DefaultStore,
		DatabaseDir:       DefaultDatabaseDir(),
		SequenceWarning:   DefaultSequenceWarning,
		Standalone:        DefaultStandalone,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t, level)
	return config
}

// NewNonce returns a random 16 character token.
func NewNonce() string {
	return strings.Replace(uuid.New().String(), "-", "", -1)[:16]
}

// SetDataDir sets the top-level directory, and updates the database
// directory if it is currently set to the default value.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
}

// Broadcast returns the limits of the broadcaster.
func (c *Config) Broadcast() broadcast.Config {
	return broadcast.Config{
		BroadcastInterval: c.BroadcastInterval,
		BroadcastLimit:    c.BroadcastLimit,
		ParallelLimit:     c.ParallelLimit,
		ReleaseLimit:      c.ReleaseLimit,
		RelayLimit:        c.RelayLimit,
		PeerLimit:         c.MaxPeers,
	}
}

// Logger returns a formatted logrus Entry, with prefix set to "courier". When
// LogFile is set, log lines are also written to that file.
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
		if c.LogFile != "" {
			c.logger.AddHook(lfshook.NewHook(
				lfshook.PathMap{
					logrus.DebugLevel: c.LogFile,
					logrus.InfoLevel:  c.LogFile,
					logrus.WarnLevel:  c.LogFile,
					logrus.ErrorLevel: c.LogFile,
					logrus.FatalLevel: c.LogFile,
					logrus.PanicLevel: c.LogFile,
				},
				&logrus.JSONFormatter{},
			))
		}
	}
	return c.logger.WithField("prefix", "courier")
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultDataDir return the default directory name for the node's data,
// based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Courier")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Courier")
		} else {
			return filepath.Join(home, ".courier")
		}
	}
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
