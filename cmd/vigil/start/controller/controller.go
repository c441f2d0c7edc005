package controller

import (
	"context"
	"fmt"
	"sync"
	"time"
	"vigil/internal/audit"
	"vigil/internal/cache"
	"vigil/internal/cli"
	"vigil/internal/common"
	"vigil/internal/controller"
	"vigil/internal/database"
	"vigil/internal/email"
	"vigil/internal/events"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var flags cli.Flags = cli.Flags{
	{
		Name:         "listen-addr",
		DefaultValue: "0.0.0.0:54321",
		Usage:        "specifies the listen address of the server",
		Type:         cli.FlagTypeString,
	},
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
		Name:         "mongo-uri",
		DefaultValue: "",
		Usage:        "specifies the mongo connection uri for the audit trail, audit logging is disabled when empty",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "nats-addr",
		DefaultValue: "",
		Usage:        "specifies the address of the nats server for security activity events, events are disabled when empty",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "public-server-url",
		DefaultValue: "",
		Usage:        "specifies a url where the controller server can be accessed via - required for emails to work properly",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "redis-addr",
		DefaultValue: "localhost:6379",
		Usage:        "defines the hostname (including port) of the redis server",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "redis-username",
		DefaultValue: "vigil",
		Usage:        "defines the username used to login to redis",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "redis-password",
		DefaultValue: "password",
		Usage:        "defines the password used to login to redis",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "sender-email",
		DefaultValue: "noreply@notification.vigil.dev",
		Usage:        "defines the notification sender's address",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "sender-name",
		DefaultValue: "Vigil Notifications",
		Usage:        "defines the notification sender's name",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "session-signing-token",
		DefaultValue: "super_secret_session_signing_token",
		Usage:        "specifies the token used to sign sessions",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "smtp-username",
		DefaultValue: "",
		Usage:        "defines the smtp server user's email address",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "smtp-password",
		DefaultValue: "",
		Usage:        "defines the smtp server user's password",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "smtp-hostname",
		DefaultValue: "",
		Usage:        "defines the smtp server's hostname",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "smtp-port",
		DefaultValue: 587,
		Usage:        "defines the smtp server's port",
		Type:         cli.FlagTypeInteger,
	},
	{
		Name:         "totp-issuer",
		DefaultValue: "Vigil",
		Usage:        "defines the issuer shown in authenticator apps",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "webauthn-rp-id",
		DefaultValue: "localhost",
		Usage:        "defines the relying party id presented to security keys, usually the public hostname",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "webauthn-rp-name",
		DefaultValue: "Vigil",
		Usage:        "defines the relying party display name presented to security keys",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "webauthn-origin",
		DefaultValue: []string{"http://localhost:54321"},
		Usage:        "defines the origins that webauthn attestation responses are accepted from",
		Type:         cli.FlagTypeStringSlice,
	},
}

func init() {
	flags.AddToCommand(Command)
}

var Command = &cobra.Command{
	Use:     "controller",
	Aliases: []string{"c"},
	Short:   "Starts the controller component",
	Long:    "Starts the controller component which serves as the API layer that user interfaces connect to",
	PreRun: func(cmd *cobra.Command, args []string) {
		flags.BindViper(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		logrus.Debugf("starting logging engine...")
		serviceLogs := make(chan common.ServiceLog, 64)
		common.StartServiceLogLoop(serviceLogs)
		logrus.Debugf("started logging engine")

		logrus.Infof("establishing connection to database...")
		connectionId := "vigil/controller"
		databaseConnection, err := database.ConnectMysql(database.ConnectOpts{
			ConnectionId: connectionId,
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

		logrus.Infof("starting connection freshness verifier...")
		databaseConnectionOk := true
		databaseConnectionStatusLastUpdatedAt := time.Now()
		databaseConnectionStatusUpdates := make(chan bool)
		var databaseConnectionStatusMutex sync.Mutex
		go func() {
			for {
				statusUpdate := <-databaseConnectionStatusUpdates
				databaseConnectionStatusMutex.Lock()
				if statusUpdate != databaseConnectionOk {
					logAtLevel := logrus.Infof
					if !statusUpdate {
						logAtLevel = logrus.Warnf
					}
					logAtLevel("database connection freshness status switched to '%v'", statusUpdate)
					databaseConnectionStatusLastUpdatedAt = time.Now()
				}
				databaseConnectionOk = statusUpdate
				databaseConnectionStatusMutex.Unlock()
			}
		}()
		go func() {
			for {
				logrus.Tracef("verifying database connection freshness...")
				if err := database.CheckMysqlConnection(connectionId); err != nil {
					logrus.Errorf("failed to check mysql connection with id '%s': %s", connectionId, err)
					databaseConnectionStatusUpdates <- false
					if err := database.RefreshMysqlConnection(connectionId); err != nil {
						logrus.Errorf("failed to refresh mysql connection with id '%s': %s", connectionId, err)
					}
				} else {
					logrus.Tracef("database connection freshness verified")
					databaseConnectionStatusUpdates <- true
				}
				<-time.After(3 * time.Second)
			}
		}()

		logrus.Infof("establishing connection to cache...")
		if err := cache.InitRedis(cache.InitRedisOpts{
			Addr:        viper.GetString("redis-addr"),
			Username:    viper.GetString("redis-username"),
			Password:    viper.GetString("redis-password"),
			ServiceLogs: serviceLogs,
		}); err != nil {
			return fmt.Errorf("failed to initialise redis cache: %w", err)
		}
		logrus.Debugf("established connection to cache")

		mongoUri := viper.GetString("mongo-uri")
		if mongoUri != "" {
			logrus.Infof("establishing connection to audit database...")
			connectCtx, connectCancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer connectCancel()
			mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(mongoUri))
			if err != nil {
				return fmt.Errorf("failed to connect to audit database: %w", err)
			}
			if err := audit.InitMongo(mongoClient); err != nil {
				return fmt.Errorf("failed to initialise audit logging: %w", err)
			}
			logrus.Debugf("established connection to audit database")
		} else {
			logrus.Warnf("audit logging is not enabled")
		}

		var eventsPublisher *events.Publisher
		natsAddr := viper.GetString("nats-addr")
		if natsAddr != "" {
			logrus.Infof("establishing connection to events queue...")
			eventsPublisher, err = events.NewPublisher(events.NewPublisherOpts{
				Addr:        natsAddr,
				ServiceLogs: serviceLogs,
			})
			if err != nil {
				return fmt.Errorf("failed to connect to events queue: %w", err)
			}
			defer eventsPublisher.Close()
			logrus.Debugf("established connection to events queue")
		} else {
			logrus.Warnf("security activity events are not enabled")
		}

		logrus.Infof("initialising application...")
		listenAddress := viper.GetString("listen-addr")
		publicUrl := viper.GetString("public-server-url")
		if publicUrl == "" {
			publicUrl = fmt.Sprintf("http://%s", listenAddress)
		}
		controllerOpts := controller.HttpApplicationOpts{
			DatabaseConnection: databaseConnection,
			EventsPublisher:    eventsPublisher,
			ReadinessChecks: []func() error{
				func() error {
					if !databaseConnectionOk {
						return fmt.Errorf("database connection is pending restoration")
					}
					return nil
				},
			},
			LivenessChecks: []func() error{
				func() error {
					if !databaseConnectionOk && databaseConnectionStatusLastUpdatedAt.Before(time.Now().Add(-30*time.Second)) {
						return fmt.Errorf("database connection is invalid")
					}
					return nil
				},
			},
			PublicServerUrl:     publicUrl,
			ServiceLogs:         serviceLogs,
			SessionSigningToken: viper.GetString("session-signing-token"),
			TotpIssuer:          viper.GetString("totp-issuer"),
			WebauthnRpId:        viper.GetString("webauthn-rp-id"),
			WebauthnRpName:      viper.GetString("webauthn-rp-name"),
			WebauthnOrigins:     viper.GetStringSlice("webauthn-origin"),
		}

		smtpHostname := viper.GetString("smtp-hostname")
		if smtpHostname != "" {
			logrus.Infof("initialising email...")
			controllerOpts.EmailConfig = &controller.SmtpServerConfig{
				Hostname: smtpHostname,
				Port:     viper.GetInt("smtp-port"),
				Username: viper.GetString("smtp-username"),
				Password: viper.GetString("smtp-password"),
				Sender: email.User{
					Address: viper.GetString("sender-email"),
					Name:    viper.GetString("sender-name"),
				},
			}
			logrus.Infof("initialised email")
		}

		controllerHandler, err := controller.GetHttpApplication(controllerOpts)
		if err != nil {
			return fmt.Errorf("failed to initialise application: %w", err)
		}
		logrus.Debugf("initialised application")

		httpServerDone := make(chan common.Done)
		server, err := common.NewHttpServer(common.NewHttpServerOpts{
			Addr:        listenAddress,
			Done:        httpServerDone,
			Handler:     controllerHandler,
			ServiceLogs: serviceLogs,
		})
		if err != nil {
			return fmt.Errorf("failed to create new http server: %w", err)
		}
		logrus.Debugf("initialised server")
		logrus.Infof("starting server...")
		if err := server.Start(); err != nil {
			return fmt.Errorf("failed to start http server: %w", err)
		}
		return nil
	},
}
