package entity

import "time"

// OTPRecord is the durable one-time-passcode state for a destination. There
// is at most one record per destination; reissuing overwrites it in place.
type OTPRecord struct {
	Destination       string
	Kind              DestinationKind
	Code              string
	IsValidated       bool
	RemainingAttempts int16
	SendCounter       int32
	ResendNotBefore   time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AuthTransaction is the audit row written on every successful login. On
// refresh only Token and ExpiresAt change.
type AuthTransaction struct {
	ID           int64
	CreatedBy    int64
	IPAddress    string
	Token        string
	RefreshToken string
	SessionHash  string
	ExpiresAt    time.Time
	CreateDate   time.Time
	UpdateDate   time.Time
}

// DeliveryReport is the notification gateway result for one send call.
type DeliveryReport struct {
	Success bool
	Message string
}

type User struct {
	ID         int64
	Username   string
	Email      string
	Mobile     string
	Name       string
	LastName   string
	Password   string // hashed
	IsActive   bool
	LastLogin  *time.Time
	DateJoined time.Time
	UpdateDate time.Time
}

// FullName joins Name and LastName for token claims and greetings.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.Name
	}
	if u.Name == "" {
		return u.LastName
	}
	return u.Name + " " + u.LastName
}

type NewUser struct {
	ID       int64
	Username string
	Email    string
	Mobile   string
	Name     string
	LastName string
	Password string // hashed
	IsActive bool
}

type PatchUser struct {
	ID       int64
	Name     string
	LastName string
}

type Address struct {
	ID        int64
	UserID    int64
	City      string
	Street    string
	House     string
	Apartment string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExtraMobile is a secondary phone number attached to a user. It becomes
// usable only after OTP confirmation.
type ExtraMobile struct {
	ID        int64
	UserID    int64
	Mobile    string
	Confirmed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
