package vigil

import (
	"fmt"
	"os"
	"strings"
	"vigil/cmd/vigil/migrate"
	"vigil/cmd/vigil/start"
	"vigil/internal/cli"
	"vigil/internal/common"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var availableLogLevels = []string{
	string(common.LogLevelTrace),
	string(common.LogLevelDebug),
	string(common.LogLevelInfo),
	string(common.LogLevelWarn),
	string(common.LogLevelError),
}

var persistentFlags cli.Flags = cli.Flags{
	{
		Name:         "log-level",
		Short:        'l',
		DefaultValue: "info",
		Usage:        fmt.Sprintf("Sets the log level (one of [%s])", strings.Join(availableLogLevels, ", ")),
		Type:         cli.FlagTypeString,
	},
}

func init() {
	Command.AddCommand(migrate.Command)
	Command.AddCommand(start.Command)
	Command.SilenceErrors = true
	Command.SilenceUsage = true

	persistentFlags.AddToCommand(Command, true)

	logrus.SetOutput(os.Stderr)
	cobra.OnInitialize(func() {
		persistentFlags.BindViper(Command, true)
		cli.InitLogging(viper.GetString("log-level"))
	})

	cli.InitConfig()
}

var Command = &cobra.Command{
	Use:   "vigil",
	Short: "Control-plane API for the Vigil monitoring platform",
	Long:  "Control-plane API for the Vigil monitoring platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}
