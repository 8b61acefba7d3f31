package logging

import (
	"errors"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eugenenazirov/decision-maker/internal/config"
)

const (
	sourceLocationKey = "logging.googleapis.com/sourceLocation"
	labelsKey         = "logging.googleapis.com/labels"
)

// New builds the service logger for the given settings. Development mode gets
// a coloured console logger at debug level; production gets JSON records at
// info level shaped for Google Cloud Logging.
func New(settings *config.Settings) (*zap.Logger, error) {
	return newLogger(settings, zapcore.Lock(os.Stdout))
}

func newLogger(settings *config.Settings, out zapcore.WriteSyncer) (*zap.Logger, error) {
	if settings == nil {
		return nil, errors.New("build logger: settings are required")
	}

	var logger *zap.Logger
	level := zapcore.InfoLevel
	if settings.IsDevelopment() {
		level = zapcore.DebugLevel
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(developmentEncoderConfig()), out, level)
		logger = zap.New(core, zap.AddCaller(), zap.Development())
	} else {
		core := zapcore.NewCore(zapcore.NewJSONEncoder(productionEncoderConfig()), out, level)
		logger = zap.New(&sourceLocationCore{Core: core}, zap.AddCaller(),
			zap.Fields(zap.Object(labelsKey, resourceLabels{
				projectID:    settings.GCPProjectID(),
				resourceType: settings.GCPResourceType(),
			})),
		)
	}

	logger.Info("logging configured",
		zap.Stringer("mode", settings.Mode()),
		zap.Stringer("log_level", level),
		zap.String("gcp_project_id", settings.GCPProjectID()),
	)
	return logger, nil
}

func developmentEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.ConsoleSeparator = " | "
	return cfg
}

func productionEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.LevelKey = "severity"
	cfg.MessageKey = "message"
	cfg.NameKey = "logger"
	cfg.CallerKey = zapcore.OmitKey
	cfg.StacktraceKey = "stacktrace"
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339Nano))
	}
	cfg.EncodeLevel = severityEncoder
	return cfg
}

// severityEncoder maps zap levels onto Cloud Logging severities.
func severityEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString("DEBUG")
	case zapcore.InfoLevel:
		enc.AppendString("INFO")
	case zapcore.WarnLevel:
		enc.AppendString("WARNING")
	case zapcore.ErrorLevel:
		enc.AppendString("ERROR")
	case zapcore.DPanicLevel:
		enc.AppendString("CRITICAL")
	case zapcore.PanicLevel:
		enc.AppendString("ALERT")
	case zapcore.FatalLevel:
		enc.AppendString("EMERGENCY")
	default:
		enc.AppendString("DEFAULT")
	}
}

type resourceLabels struct {
	projectID    string
	resourceType string
}

func (l resourceLabels) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("project_id", l.projectID)
	enc.AddString("resource_type", l.resourceType)
	return nil
}

type sourceLocation struct {
	caller zapcore.EntryCaller
}

func (s sourceLocation) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("file", s.caller.File)
	enc.AddInt("line", s.caller.Line)
	enc.AddString("function", s.caller.Function)
	return nil
}

// sourceLocationCore writes the entry caller as a structured source location
// instead of zap's flat caller string.
type sourceLocationCore struct {
	zapcore.Core
}

func (c *sourceLocationCore) With(fields []zapcore.Field) zapcore.Core {
	return &sourceLocationCore{Core: c.Core.With(fields)}
}

func (c *sourceLocationCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *sourceLocationCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	if ent.Caller.Defined {
		fields = append(fields, zap.Object(sourceLocationKey, sourceLocation{caller: ent.Caller}))
	}
	return c.Core.Write(ent, fields)
}

// Bootstrap returns the logger used while settings are being resolved, before
// the mode is known. It is silent unless debug is set.
func Bootstrap(debug bool, out io.Writer) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(developmentEncoderConfig()), zapcore.AddSync(out), zapcore.DebugLevel)
	return zap.New(core).Named("settings")
}
