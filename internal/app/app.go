package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sc619/authd/internal/pkg/clock"
	"github.com/sc619/authd/internal/pkg/config"
	"github.com/sc619/authd/internal/pkg/goroutine"
	"github.com/sc619/authd/internal/pkg/hash"
	"github.com/sc619/authd/internal/pkg/instrument"
	"github.com/sc619/authd/internal/pkg/jwt"
	"github.com/sc619/authd/internal/pkg/lock"
	"github.com/sc619/authd/internal/pkg/mail"
	"github.com/sc619/authd/internal/pkg/messaging"
	"github.com/sc619/authd/internal/pkg/router"
	"github.com/sc619/authd/internal/pkg/sms"
	"github.com/sc619/authd/internal/pkg/uid"
	"github.com/sc619/authd/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	bcrypt    hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	locker    lock.Locker
	mail      mail.Mail
	sms       sms.SMS
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initSMS()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
