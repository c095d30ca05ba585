// Package config defines the configuration for a courier node.
//
// Whether the node is started from the command line or embedded in Go code,
// every component reads its settings from the Config object defined in this
// package. The node also relies on a data directory, Config.DataDir, where it
// looks for:
//
//  courier.toml // (optional) configuration file, see cmd/courier.
//  peers.json   // (optional) the seed peers. Seeds are never penalized.
//  badger_db    // the block database when Store is set.
package config
