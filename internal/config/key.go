package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Key identifies a recognized environment variable. Its string form is also
// the variable name read from the environment.
type Key string

const (
	KeyMode            Key = "mode"
	KeyHost            Key = "host"
	KeyPort            Key = "port"
	KeyGCPProjectID    Key = "gcp_project_id"
	KeyGCPResourceType Key = "gcp_resource_type"
)

// Keys lists every recognized key in resolution order.
func Keys() []Key {
	return []Key{KeyMode, KeyHost, KeyPort, KeyGCPProjectID, KeyGCPResourceType}
}

func (k Key) String() string {
	return string(k)
}

// Mode is the deployment context that decides which defaults are permitted.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

func (m Mode) String() string {
	return string(m)
}

// validate backs the mode and port checks.
var validate = validator.New()

// ParseMode converts a raw value into a Mode. Only the exact lower-case names
// are accepted.
func ParseMode(raw string) (Mode, error) {
	if err := validate.Var(raw, "required,oneof=development production"); err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
	}
	return Mode(raw), nil
}
