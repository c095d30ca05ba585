package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mosaicnetworks/courier/src/config"
	"github.com/mosaicnetworks/courier/src/dummy"
	"github.com/mosaicnetworks/courier/src/net"
	"github.com/mosaicnetworks/courier/src/node"
	"github.com/mosaicnetworks/courier/src/peers"
	"github.com/mosaicnetworks/courier/src/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//NewRunCmd returns the command that starts a courier node
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run node",
		PreRunE: loadConfig,
		RunE:    runCourier,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runCourier(cmd *cobra.Command, args []string) error {
	logger := _config.Logger()

	seeds, err := loadSeeds(_config, logger)
	if err != nil {
		logger.WithError(err).Error("Cannot load seed peers")
		return err
	}
	registry := peers.NewPeerSet(seeds, _config.Nonce)

	blockStore, err := newStore(_config, logger)
	if err != nil {
		logger.WithError(err).Error("Cannot open block store")
		return err
	}
	defer blockStore.Close()

	trans, notifier, err := newTransport(_config, logger)
	if err != nil {
		logger.WithError(err).Error("Cannot initialize transport")
		return err
	}

	pool := dummy.NewTxPool(logger)
	multisig := dummy.NewMultisig(pool, logger)
	bus := dummy.NewBus(blockStore, pool, logger)
	ledger := dummy.NewLedger()

	n := node.NewNode(_config,
		node.Collaborators{
			Ledger:   ledger,
			Pool:     pool,
			Multisig: multisig,
			Blocks:   dummy.NewBlockLogic(ledger),
			Store:    blockStore,
			System:   dummy.NewSystem(blockStore, _config.Nonce, _config.Version),
			Loader:   dummy.NewLoader(),
			Bus:      bus,
		},
		registry,
		trans,
		notifier,
	)

	pool.OnTransaction = n.OnUnconfirmedTransaction
	multisig.OnSignature = n.OnSignature
	bus.OnBlock = n.OnNewBlock

	go trans.Listen()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		logger.Info("Caught signal, shutting down")
		n.Shutdown()
	}()

	n.Run()

	return nil
}

// loadSeeds reads [datadir]/peers.json. A missing file means no seeds.
func loadSeeds(conf *config.Config, logger *logrus.Entry) ([]*peers.Peer, error) {
	if conf.Standalone {
		logger.Debug("Standalone, skipping seed peers")
		return nil, nil
	}

	jsonPeers := peers.NewJSONPeerSet(conf.DataDir)

	seeds, err := jsonPeers.Peers()
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debugf("No seed peers in %s", jsonPeers.Path())
			return nil, nil
		}
		return nil, err
	}

	logger.WithField("seeds", len(seeds)).Debug("Loaded seed peers")

	return seeds, nil
}

func newStore(conf *config.Config, logger *logrus.Entry) (store.Store, error) {
	if !conf.Store {
		return store.NewInmemStore(), nil
	}

	return store.NewBadgerStore(conf.DatabaseDir, logger.WithField("prefix", "badger"))
}

// newTransport returns the transport selected by conf. The WAMP transport is
// also the event notifier, publishing change events on its router.
func newTransport(conf *config.Config, logger *logrus.Entry) (net.Transport, net.Notifier, error) {
	entry := logger.WithField("prefix", "transport")

	switch conf.Transport {
	case config.TCPTransport:
		trans, err := net.NewTCPTransport(conf.BindAddr,
			conf.AdvertiseAddr,
			conf.MaxPool,
			conf.MaxConnsPerIP,
			conf.TCPTimeout,
			entry,
		)
		if err != nil {
			return nil, nil, err
		}
		return trans, nil, nil
	case config.WAMPTransport:
		trans, err := net.NewWAMPTransport(conf.BindAddr,
			conf.AdvertiseAddr,
			conf.WAMPRealm,
			conf.TCPTimeout,
			entry,
		)
		if err != nil {
			return nil, nil, err
		}
		return trans, trans, nil
	default:
		return nil, nil, fmt.Errorf("unknown transport %q", conf.Transport)
	}
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

//AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {

	cmd.Flags().String("datadir", _config.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log-file", _config.LogFile, "Also write logs to this file, as JSON")

	// Network
	cmd.Flags().StringP("listen", "l", _config.BindAddr, "Listen IP:Port for courier node")
	cmd.Flags().StringP("advertise", "a", _config.AdvertiseAddr, "Advertise IP:Port for courier node")
	cmd.Flags().String("transport", _config.Transport, "tcp or wamp")
	cmd.Flags().String("wamp-realm", _config.WAMPRealm, "WAMP realm")
	cmd.Flags().DurationP("timeout", "t", _config.TCPTimeout, "RPC Timeout")
	cmd.Flags().Int("max-pool", _config.MaxPool, "Connection pool size max")
	cmd.Flags().Int("max-conns-per-ip", _config.MaxConnsPerIP, "Max inbound connections per IP")

	// Access
	cmd.Flags().String("auth-key", _config.AuthKey, "Key required by internal functions")
	cmd.Flags().String("nonce", _config.Nonce, "Node nonce, random by default")
	cmd.Flags().String("version", _config.Version, "Version announced to peers")

	// Peers and broadcast
	cmd.Flags().Bool("standalone", _config.Standalone, "Do not load seed peers")
	cmd.Flags().Int("max-peers", _config.MaxPeers, "Max number of peers broadcast to")
	cmd.Flags().Int("relay-limit", _config.RelayLimit, "Max number of relays per object")
	cmd.Flags().Duration("broadcast-interval", _config.BroadcastInterval, "Time between queue releases")
	cmd.Flags().Int("broadcast-limit", _config.BroadcastLimit, "Max number of peers per broadcast")
	cmd.Flags().Int("parallel-limit", _config.ParallelLimit, "Max number of concurrent sends")
	cmd.Flags().Int("release-limit", _config.ReleaseLimit, "Max number of objects per release")
	cmd.Flags().Int("max-shared-txs", _config.MaxSharedTxs, "Max number of transactions per batch")
	cmd.Flags().Int("blocks-limit", _config.BlocksLimit, "Max number of blocks per blocks response")
	cmd.Flags().Int("sequence-warning", _config.SequenceWarning, "Pending task count above which the balance sequence warns")

	// Store
	cmd.Flags().Bool("store", _config.Store, "Use badgerDB instead of in-mem DB")
	cmd.Flags().String("db", _config.DatabaseDir, "Database directory")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --db, this will update the
	// default database dir to be inside the new datadir
	_config.SetDataDir(_config.DataDir)

	logFields := logrus.Fields{
		"DataDir":           _config.DataDir,
		"BindAddr":          _config.BindAddr,
		"AdvertiseAddr":     _config.AdvertiseAddr,
		"Transport":         _config.Transport,
		"MaxPool":           _config.MaxPool,
		"TCPTimeout":        _config.TCPTimeout,
		"Nonce":             _config.Nonce,
		"Version":           _config.Version,
		"MaxPeers":          _config.MaxPeers,
		"RelayLimit":        _config.RelayLimit,
		"BroadcastInterval": _config.BroadcastInterval,
		"BroadcastLimit":    _config.BroadcastLimit,
		"ParallelLimit":     _config.ParallelLimit,
		"ReleaseLimit":      _config.ReleaseLimit,
		"Store":             _config.Store,
		"Standalone":        _config.Standalone,
		"LogLevel":          _config.LogLevel,
	}

	if _config.Store {
		logFields["DatabaseDir"] = _config.DatabaseDir
	}

	if _config.Transport == config.WAMPTransport {
		logFields["WAMPRealm"] = _config.WAMPRealm
	}

	_config.Logger().WithFields(logFields).Debug("RUN")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/courier.toml (.json, .yaml also work)
	viper.SetConfigName(config.DefaultConfigFile) // name of config file (without extension)
	viper.AddConfigPath(_config.DataDir)          // search root directory

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Logger().Debugf("No config file found in: %s", _config.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}
