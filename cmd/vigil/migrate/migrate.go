package migrate

import (
	"fmt"
	"vigil/internal/cli"
	"vigil/internal/common"
	"vigil/internal/database"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var flags cli.Flags = cli.Flags{
	{
		Name:         "mysql-host",
		Short:        'H',
		DefaultValue: "127.0.0.1",
		Usage:        "specifies the hostname of the database",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "mysql-port",
		Short:        'P',
		DefaultValue: 3306,
		Usage:        "specifies the port which the database is listening on",
		Type:         cli.FlagTypeInteger,
	},
	{
		Name:         "mysql-database",
		Short:        'N',
		DefaultValue: "vigil",
		Usage:        "specifies the name of the central database schema",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "mysql-user",
		Short:        'U',
		DefaultValue: "vigil",
		Usage:        "specifies the username to use to login",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "mysql-password",
		Short:        'p',
		DefaultValue: "password",
		Usage:        "specifies the password to use to login",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "steps",
		Short:        's',
		DefaultValue: 0,
		Usage:        "when specified, applies only this number of migrations (negative values roll back)",
		Type:         cli.FlagTypeInteger,
	},
}

func init() {
	flags.AddToCommand(Command)
}

var Command = &cobra.Command{
	Use:     "migrate",
	Aliases: []string{"m"},
	Short:   "Runs database schema migrations",
	Long:    "Runs database schema migrations against the central database",
	PreRun: func(cmd *cobra.Command, args []string) {
		flags.BindViper(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		logrus.Debugf("starting logging engine...")
		serviceLogs := make(chan common.ServiceLog, 64)
		common.StartServiceLogLoop(serviceLogs)
		logrus.Debugf("started logging engine")

		logrus.Infof("establishing connection to database...")
		databaseConnection, err := database.ConnectMysql(database.ConnectOpts{
			ConnectionId: "vigil/migrate",
			Host:         viper.GetString("mysql-host"),
			Port:         viper.GetInt("mysql-port"),
			Username:     viper.GetString("mysql-user"),
			Password:     viper.GetString("mysql-password"),
			Database:     viper.GetString("mysql-database"),
		})
		if err != nil {
			return fmt.Errorf("failed to establish connection to database: %w", err)
		}
		logrus.Debugf("established connection to database")

		logrus.Infof("applying migrations...")
		if err := database.MigrateMysql(database.MigrateOpts{
			Connection:  databaseConnection,
			Steps:       viper.GetInt("steps"),
			ServiceLogs: serviceLogs,
		}); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		logrus.Infof("migrations applied")
		return nil
	},
}
