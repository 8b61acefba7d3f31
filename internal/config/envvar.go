package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"go.uber.org/zap"
)

// errNoConverter is returned when a non-string variable has no converter.
var errNoConverter = errors.New("no converter configured")

// LookupFunc reads a raw value from the environment. The boolean reports
// whether the variable is set at all, so an empty value stays distinct from
// an absent one.
type LookupFunc func(name string) (string, bool)

// Option configures how variables are looked up and logged.
type Option func(*options)

type options struct {
	lookup LookupFunc
	logger *zap.Logger
}

// WithLookup replaces os.LookupEnv, primarily for tests.
func WithLookup(lookup LookupFunc) Option {
	return func(o *options) {
		if lookup != nil {
			o.lookup = lookup
		}
	}
}

// WithLogger sets the logger that receives resolution debug records.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		lookup: os.LookupEnv,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ModeConditionalDefault is a fallback value that only applies in the given modes.
type ModeConditionalDefault[T any] struct {
	value T
	modes []Mode
}

// NewModeConditionalDefault pairs value with the modes it is valid in. It
// panics when no mode is given.
func NewModeConditionalDefault[T any](value T, modes ...Mode) ModeConditionalDefault[T] {
	if len(modes) == 0 {
		panic("config: mode conditional default needs at least one mode")
	}
	return ModeConditionalDefault[T]{value: value, modes: slices.Clone(modes)}
}

// Value returns the fallback value.
func (d ModeConditionalDefault[T]) Value() T {
	return d.value
}

// AllowedModes returns a copy of the modes the default applies to.
func (d ModeConditionalDefault[T]) AllowedModes() []Mode {
	return slices.Clone(d.modes)
}

// Applies reports whether the default may be used in mode.
func (d ModeConditionalDefault[T]) Applies(mode Mode) bool {
	return slices.Contains(d.modes, mode)
}

// VarOption configures an EnvironmentVariable.
type VarOption[T any] func(*EnvironmentVariable[T])

// Sensitive keeps the variable's value out of logs and error messages.
func Sensitive[T any]() VarOption[T] {
	return func(v *EnvironmentVariable[T]) {
		v.sensitive = true
	}
}

// WithDefault sets a fallback used in any mode. It wins over a mode
// conditional default.
func WithDefault[T any](value T) VarOption[T] {
	return func(v *EnvironmentVariable[T]) {
		v.def = &value
	}
}

// WithModeDefault sets a fallback restricted to some modes.
func WithModeDefault[T any](d ModeConditionalDefault[T]) VarOption[T] {
	return func(v *EnvironmentVariable[T]) {
		v.modeDefault = &d
	}
}

// WithValidator rejects raw values for which fn returns false.
func WithValidator[T any](fn func(raw string) bool) VarOption[T] {
	return func(v *EnvironmentVariable[T]) {
		v.validator = fn
	}
}

// WithConverter turns the raw value into T.
func WithConverter[T any](fn func(raw string) (T, error)) VarOption[T] {
	return func(v *EnvironmentVariable[T]) {
		v.converter = fn
	}
}

// EnvironmentVariable describes how one environment variable resolves into a
// value of type T.
type EnvironmentVariable[T any] struct {
	key         Key
	sensitive   bool
	def         *T
	modeDefault *ModeConditionalDefault[T]
	validator   func(string) bool
	converter   func(string) (T, error)
}

// NewEnvironmentVariable builds a descriptor for key. Without WithConverter
// the raw string is returned as is, which only works when T is string.
func NewEnvironmentVariable[T any](key Key, opts ...VarOption[T]) EnvironmentVariable[T] {
	v := EnvironmentVariable[T]{
		key:       key,
		converter: identity[T],
	}
	for _, opt := range opts {
		opt(&v)
	}
	return v
}

func identity[T any](raw string) (T, error) {
	if value, ok := any(raw).(T); ok {
		return value, nil
	}
	var zero T
	return zero, errNoConverter
}

// Key returns the key the variable is read from.
func (v EnvironmentVariable[T]) Key() Key {
	return v.key
}

// Resolve reads the variable and returns its typed value. An empty mode means
// no mode context, in which case mode conditional defaults never apply.
// Every failure is an *Error.
func (v EnvironmentVariable[T]) Resolve(mode Mode, opts ...Option) (T, error) {
	o := newOptions(opts)
	logger := o.logger.With(zap.String("key", v.key.String()))

	value, err := v.resolve(mode, o.lookup, logger)
	if err != nil {
		logger.Debug("environment variable resolution failed", zap.Error(err))
		return value, err
	}
	return value, nil
}

func (v EnvironmentVariable[T]) resolve(mode Mode, lookup LookupFunc, logger *zap.Logger) (T, error) {
	var zero T

	raw, ok := lookup(v.key.String())
	if !ok {
		logger.Debug("environment variable not found, checking defaults")
		return v.fallback(mode, logger)
	}

	if raw == "" {
		return zero, newError(v.key, "environment variable '%s' is empty", v.key)
	}

	if v.validator != nil && !v.validator(raw) {
		if v.sensitive {
			return zero, newError(v.key, "validation failed for '%s'.", v.key)
		}
		return zero, newError(v.key, "validation failed for '%s'. raw_value: %s", v.key, raw)
	}

	if v.sensitive {
		logger.Debug("loaded sensitive variable from environment")
	} else {
		logger.Debug("loaded variable from environment", zap.String("raw_value", raw))
	}

	value, err := v.converter(raw)
	if err != nil {
		cfgErr := newError(v.key, "conversion failed for '%s'", v.key)
		if !v.sensitive {
			cfgErr.Message = fmt.Sprintf("%s. raw_value: %s", cfgErr.Message, raw)
		}
		cfgErr.Sensitive = v.sensitive
		cfgErr.Err = err
		return zero, cfgErr
	}
	return value, nil
}

func (v EnvironmentVariable[T]) fallback(mode Mode, logger *zap.Logger) (T, error) {
	if v.def != nil {
		logger.Debug("using default value")
		return *v.def, nil
	}

	if v.modeDefault != nil && mode != "" && v.modeDefault.Applies(mode) {
		logger.Debug("using mode conditional default", zap.Stringer("mode", mode))
		return v.modeDefault.Value(), nil
	}

	var zero T
	modeContext := ""
	if mode != "" {
		modeContext = fmt.Sprintf(" (current_mode: %s)", mode)
	}
	return zero, newError(v.key,
		"%s environment variable is required%s. No default value is available for this mode.",
		v.key, modeContext)
}
