package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sc619/authd/internal/auth/inbound"
	"github.com/sc619/authd/internal/auth/outbound/db"
	"github.com/sc619/authd/internal/auth/outbound/mq"
	"github.com/sc619/authd/internal/auth/outbound/notify"
	"github.com/sc619/authd/internal/auth/usecase"
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

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Locker     lock.Locker                `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	SMS        sms.SMS                    `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Bcrypt     hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbAuth := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)
	gateway := notify.New(dep.Mail, dep.SMS, dep.Config.GetString("mail.from"), dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbAuth,
		RepoNotify:    gateway,
		RepoMessaging: repoMsg,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Locker:        dep.Locker,
		HMAC:          dep.HMAC,
		Bcrypt:        dep.Bcrypt,
		UID:           dep.UID,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
