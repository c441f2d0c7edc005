package controller

import (
	"database/sql"
	"net/url"
	"vigil/internal/cache"
	"vigil/internal/common"
	"vigil/internal/events"
	"vigil/internal/mfa"

	"github.com/gorilla/mux"
)

const sessionCachePrefix = "sessions"

var (
	db              *sql.DB
	serviceLogs     *chan<- common.ServiceLog
	cacheInstance   cache.Cache
	mfaService      *mfa.Service
	eventsPublisher *events.Publisher
	publicServerUrl *url.URL
)

type RouteRegistrationOpts struct {
	Router      *mux.Router
	ServiceLogs chan<- common.ServiceLog
}
