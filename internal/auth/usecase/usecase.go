package usecase

import (
	"context"
	"time"

	"github.com/sc619/authd/internal/auth/entity"
	"github.com/sc619/authd/internal/pkg/clock"
	"github.com/sc619/authd/internal/pkg/config"
	"github.com/sc619/authd/internal/pkg/goerror"
	"github.com/sc619/authd/internal/pkg/goroutine"
	"github.com/sc619/authd/internal/pkg/hash"
	"github.com/sc619/authd/internal/pkg/instrument"
	"github.com/sc619/authd/internal/pkg/jwt"
	"github.com/sc619/authd/internal/pkg/lock"
	"github.com/sc619/authd/internal/pkg/uid"
	"github.com/sc619/authd/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type UserLoggedInEvent struct {
	UserID    int64
	Email     string
	Mobile    string
	IPAddress string
}

type UserRegisteredEvent struct {
	UserID   int64
	Email    string
	Mobile   string
	FullName string
}

type repoMessaging interface {
	PublishUserLoggedIn(ctx context.Context, msg UserLoggedInEvent) error
	PublishUserRegistered(ctx context.Context, msg UserRegisteredEvent) error
}

type repoNotify interface {
	// Send delivers message to destinations of one channel type. Destinations
	// must be homogeneous (all email or all phone). fallback lists email
	// addresses used when the SMS path fails.
	Send(ctx context.Context, message, subject string, destinations, fallback []string) (entity.DeliveryReport, error)
}

type repoDB interface {
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByMobile(ctx context.Context, mobile string) (*entity.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)
	CountUsersByProperty(ctx context.Context, prop entity.UniqueProperty, value string) (int64, error)
	CreateUser(ctx context.Context, in entity.NewUser) error
	UpdateUserProfile(ctx context.Context, in entity.PatchUser) error
	UpdateUserPassword(ctx context.Context, userID int64, hashed string) error
	UpdateUserLastLogin(ctx context.Context, userID int64, at time.Time) error

	GetOTP(ctx context.Context, destination string) (*entity.OTPRecord, error)
	GetActiveOTP(ctx context.Context, destination string) (*entity.OTPRecord, error)
	IsOTPCodeActive(ctx context.Context, code string) (bool, error)
	UpsertOTP(ctx context.Context, rec entity.OTPRecord) error

	CreateAuthTransaction(ctx context.Context, in entity.AuthTransaction) error
	GetAuthTransactionByRefreshToken(ctx context.Context, token string) (*entity.AuthTransaction, error)
	UpdateAuthTransactionToken(ctx context.Context, id int64, token string, expiresAt time.Time) error

	GetAddressesByUserID(ctx context.Context, userID int64) ([]entity.Address, error)
	GetAddressByID(ctx context.Context, id, userID int64) (*entity.Address, error)
	CreateAddress(ctx context.Context, in entity.Address) error
	UpdateAddress(ctx context.Context, in entity.Address) error
	DeleteAddress(ctx context.Context, id, userID int64) error

	GetExtraMobilesByUserID(ctx context.Context, userID int64) ([]entity.ExtraMobile, error)
	GetExtraMobileByID(ctx context.Context, id int64) (*entity.ExtraMobile, error)
	CreateExtraMobile(ctx context.Context, in entity.ExtraMobile) error
	ConfirmExtraMobile(ctx context.Context, id int64) error
	DeleteExtraMobile(ctx context.Context, id, userID int64) error
}

type Usecase struct {
	repoDB        repoDB
	repoNotify    repoNotify
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	locker        lock.Locker
	hmac          hash.Hash
	bcrypt        hash.Hash
	uid           uid.NumberID
	uuid          uid.StringID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoNotify    repoNotify
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	Locker        lock.Locker
	HMAC          hash.Hash
	Bcrypt        hash.Hash
	UID           uid.NumberID
	UUID          uid.StringID
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoNotify:    dep.RepoNotify,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		locker:        dep.Locker,
		hmac:          dep.HMAC,
		bcrypt:        dep.Bcrypt,
		uid:           dep.UID,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

func (s *Usecase) authenticated(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	return clm, nil
}
