package commands

import (
	"github.com/mosaicnetworks/courier/src/config"
	"github.com/spf13/cobra"
)

var (
	_config = config.NewDefaultConfig()
)

//RootCmd is the root command for courier
var RootCmd = &cobra.Command{
	Use:              "courier",
	Short:            "courier peer-to-peer transport node",
	TraverseChildren: true,
}
