package config

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	defaultDevHost         = "0.0.0.0"
	defaultDevPort         = 8000
	defaultDevResourceType = "cloud_run_revision"
)

// Settings holds the resolved service configuration. Values are fixed once
// constructed.
type Settings struct {
	mode            Mode
	host            string
	port            int
	gcpProjectID    string
	gcpResourceType string
}

// NewSettings resolves every field from the environment. The mode is resolved
// first and passed to the remaining fields so that development defaults can
// apply. The first failing field aborts construction.
func NewSettings(opts ...Option) (*Settings, error) {
	mode, err := NewEnvironmentVariable(KeyMode,
		WithConverter(ParseMode),
	).Resolve("", opts...)
	if err != nil {
		return nil, err
	}

	host, err := NewEnvironmentVariable(KeyHost,
		WithModeDefault(NewModeConditionalDefault(defaultDevHost, ModeDevelopment)),
	).Resolve(mode, opts...)
	if err != nil {
		return nil, err
	}

	port, err := NewEnvironmentVariable(KeyPort,
		WithModeDefault(NewModeConditionalDefault(defaultDevPort, ModeDevelopment)),
		WithValidator[int](ValidPort),
		WithConverter(strconv.Atoi),
	).Resolve(mode, opts...)
	if err != nil {
		return nil, err
	}

	gcpProjectID, err := NewEnvironmentVariable[string](KeyGCPProjectID).Resolve(mode, opts...)
	if err != nil {
		return nil, err
	}

	gcpResourceType, err := NewEnvironmentVariable(KeyGCPResourceType,
		WithModeDefault(NewModeConditionalDefault(defaultDevResourceType, ModeDevelopment)),
	).Resolve(mode, opts...)
	if err != nil {
		return nil, err
	}

	return &Settings{
		mode:            mode,
		host:            host,
		port:            port,
		gcpProjectID:    gcpProjectID,
		gcpResourceType: gcpResourceType,
	}, nil
}

// ValidPort accepts a string of ASCII digits denoting a port in 1..65535.
func ValidPort(raw string) bool {
	if err := validate.Var(raw, "required,number"); err != nil {
		return false
	}
	port, err := strconv.Atoi(raw)
	if err != nil {
		return false
	}
	return port >= 1 && port <= 65535
}

func (s *Settings) Mode() Mode {
	return s.mode
}

func (s *Settings) Host() string {
	return s.host
}

func (s *Settings) Port() int {
	return s.port
}

func (s *Settings) GCPProjectID() string {
	return s.gcpProjectID
}

func (s *Settings) GCPResourceType() string {
	return s.gcpResourceType
}

// Addr joins host and port into a listen address.
func (s *Settings) Addr() string {
	return s.host + ":" + strconv.Itoa(s.port)
}

func (s *Settings) IsDevelopment() bool {
	return s.mode == ModeDevelopment
}

func (s *Settings) IsProduction() bool {
	return s.mode == ModeProduction
}

// MarshalYAML renders the settings as a mapping keyed by variable name, in
// resolution order.
func (s *Settings) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range Keys() {
		value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str"}
		switch key {
		case KeyMode:
			value.Value = s.mode.String()
		case KeyHost:
			value.Value = s.host
		case KeyPort:
			value.Tag = "!!int"
			value.Value = strconv.Itoa(s.port)
		case KeyGCPProjectID:
			value.Value = s.gcpProjectID
		case KeyGCPResourceType:
			value.Value = s.gcpResourceType
		default:
			return nil, fmt.Errorf("render settings: unknown key %q", key)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key.String()},
			value,
		)
	}
	return node, nil
}
