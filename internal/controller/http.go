package controller

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"vigil/internal/auth"
	"vigil/internal/cache"
	"vigil/internal/challenges"
	"vigil/internal/common"
	"vigil/internal/controller/models"
	"vigil/internal/events"
	"vigil/internal/invites"
	"vigil/internal/mfa"
	"vigil/internal/ratelimit"

	"github.com/gorilla/mux"
)

type HttpApplicationOpts struct {
	// DatabaseConnection provides a connection to a MySQL compatible database
	DatabaseConnection *sql.DB

	// EmailConfig provides SMTP configuration for email to be sent
	EmailConfig *SmtpServerConfig

	// EventsPublisher provides the NATS publisher for security activity
	// events; when nil, events are not emitted
	EventsPublisher *events.Publisher

	// SmsSender provides the gateway used to deliver enrollment codes;
	// when nil, messages go to the service log
	SmsSender auth.SmsSender

	// LivenessChecks are sequentially executed when the liveness probe endpoint is hit
	LivenessChecks []func() error

	// ReadinessChecks are sequentially executed when the readiness probe endpoint is hit
	ReadinessChecks []func() error

	// PublicServerUrl is used when communicating with customers so that the correct
	// URL appears in emails/other notifications
	PublicServerUrl string

	// ServiceLogs is a centralised channel where logs get sent to
	ServiceLogs chan<- common.ServiceLog

	// SessionSigningToken is the session signing token to use, change this to invalidate
	// all users with immediate effect
	SessionSigningToken string

	// TotpIssuer appears in authenticator apps next to the account
	TotpIssuer string

	// WebauthnRpId is the relying party identifier presented to
	// security keys, usually the public hostname
	WebauthnRpId string

	// WebauthnRpName is the relying party display name
	WebauthnRpName string

	// WebauthnOrigins lists the origins attestation responses are
	// accepted from
	WebauthnOrigins []string
}

func (o HttpApplicationOpts) Validate() error {
	errs := []error{}

	if o.DatabaseConnection == nil {
		errs = append(errs, fmt.Errorf("failed to receive a database connection: %w", ErrorMissingDatabaseConnection))
	}

	if o.ServiceLogs == nil {
		errs = append(errs, fmt.Errorf("failed to receive a service log: %w", ErrorMissingServiceLog))
	}

	if o.SessionSigningToken == "" {
		errs = append(errs, fmt.Errorf("failed to receive a session signing token: %w", ErrorMissingSigningToken))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func GetHttpApplication(opts HttpApplicationOpts) (http.Handler, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("failed to initialise http application: %w", err)
	}

	// initialise common globals

	serviceLogs = &opts.ServiceLogs

	db = opts.DatabaseConnection
	cacheInstance = cache.Get()
	eventsPublisher = opts.EventsPublisher

	var err error
	publicServerUrl, err = url.Parse(opts.PublicServerUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse server url '%s': %w: %w", opts.PublicServerUrl, ErrorInvalidPublicServerUrl, err)
	}

	models.SetSessionSigningToken(opts.SessionSigningToken)

	if opts.EmailConfig == nil {
		*serviceLogs <- common.ServiceLogf(common.LogLevelWarn, "email is not enabled")
	} else {
		smtpConfig = *opts.EmailConfig
		if err := smtpConfig.VerifyConnection(); err != nil {
			*serviceLogs <- common.ServiceLogf(common.LogLevelError, "failed to authenticate with the provided smtp configuration: %s", err)
			smtpConfig = SmtpServerConfig{}
		}
	}
	*serviceLogs <- common.ServiceLogf(common.LogLevelDebug, "email status: %v", smtpConfig.IsSet())

	smsSender := opts.SmsSender
	if smsSender == nil {
		smsSender = auth.LogSmsSender{ServiceLogs: opts.ServiceLogs}
	}

	webauthnRp, err := auth.NewWebauthn(auth.NewWebauthnOpts{
		RpId:          opts.WebauthnRpId,
		RpDisplayName: opts.WebauthnRpName,
		RpOrigins:     opts.WebauthnOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialise webauthn: %w", err)
	}

	limiter := ratelimit.Limiter{Cache: cacheInstance, Prefix: "ratelimit"}
	mfaService = mfa.NewService(mfa.NewServiceOpts{
		Strategies: []mfa.Strategy{
			mfa.TotpStrategy{Issuer: opts.TotpIssuer},
			mfa.SmsStrategy{Cache: cacheInstance, Sender: smsSender, Limiter: limiter},
			mfa.WebauthnStrategy{
				Webauthn:   webauthnRp,
				Challenges: challenges.Store{Cache: cacheInstance, Prefix: "webauthn-register"},
			},
		},
		Store:    mfaStore{},
		Sessions: sessionManager{},
		Activity: securityRecorder{},
		Invites: invites.Resumer{
			Pending:     invites.Store{Cache: cacheInstance},
			Members:     memberStore{},
			ServiceLogs: opts.ServiceLogs,
		},
		Limiter:     limiter,
		ServiceLogs: opts.ServiceLogs,
	})

	handler := mux.NewRouter()
	handler.NotFoundHandler = common.GetNotFoundHandler()
	common.RegisterCommonHttpEndpoints(common.CommonHttpEndpointsOpts{
		Router:          handler,
		ServiceLogs:     opts.ServiceLogs,
		LivenessChecks:  opts.LivenessChecks,
		ReadinessChecks: opts.ReadinessChecks,
	})

	api := handler.PathPrefix("/api").Subrouter()
	apiOpts := RouteRegistrationOpts{
		Router:      api,
		ServiceLogs: opts.ServiceLogs,
	}

	registerOrgRoutes(apiOpts)
	registerSessionRoutes(apiOpts)
	registerUserRoutes(apiOpts)

	if err := handler.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}
		*serviceLogs <- common.ServiceLogf(common.LogLevelDebug, "registered route[%s] with methods[%s]", pathTemplate, strings.Join(methods, "|"))
		return nil
	}); err != nil {
		return nil, err
	}

	return handler, nil
}
