package app

import (
	"log/slog"
	"os"

	"github.com/sc619/authd/internal/auth"
)

func (a *App) initModules() {
	if err := auth.New(auth.Dependency{
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		UUID:       a.uuid,
		Bcrypt:     a.bcrypt,
		HMAC:       a.hmac,
		Clock:      a.clock,
		Validator:  a.validator,
		Router:     a.router,
		DBConn:     a.dbConn,
		Locker:     a.locker,
		Messaging:  a.messaging,
		Mail:       a.mail,
		SMS:        a.sms,
		Goroutine:  a.goroutine,
		JWT:        a.jwt,
	}); err != nil {
		slog.Error("failed to init module auth", "error", err)
		os.Exit(1)
	}
}
