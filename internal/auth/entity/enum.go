package entity

import (
	"net/mail"
	"regexp"
	"strings"
)

// DestinationKind classifies an OTP destination by its format.
type DestinationKind int16

const (
	// KindUnknown is mean destination format is not recognized.
	KindUnknown DestinationKind = 0

	// KindEmail is mean destination is an email address.
	KindEmail DestinationKind = 1

	// KindMobile is mean destination is a phone number.
	KindMobile DestinationKind = 2
)

func (dk DestinationKind) String() string {
	switch dk {
	case KindEmail:
		return "email"
	case KindMobile:
		return "mobile"
	default:
		return "unknown"
	}
}

var reMobileDestination = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// ClassifyDestination detects whether destination is an email address or a
// phone number. Unrecognized formats map to KindUnknown.
func ClassifyDestination(destination string) DestinationKind {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return KindUnknown
	}

	if reMobileDestination.MatchString(destination) {
		return KindMobile
	}

	if addr, err := mail.ParseAddress(destination); err == nil && addr.Address == destination {
		return KindEmail
	}

	return KindUnknown
}

// UniqueProperty names a user field subject to uniqueness checks.
type UniqueProperty string

const (
	PropertyEmail    UniqueProperty = "email"
	PropertyMobile   UniqueProperty = "mobile"
	PropertyUsername UniqueProperty = "username"
)

// IsValid reports whether the property is one of the supported fields.
func (p UniqueProperty) IsValid() bool {
	switch p {
	case PropertyEmail, PropertyMobile, PropertyUsername:
		return true
	default:
		return false
	}
}
