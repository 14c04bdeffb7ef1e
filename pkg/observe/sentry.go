package observe

import (
	"encoding/json"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"

	"weather-lookup/pkg/logger"
)

const (
	_sentryMaxErrorDepth        int           = 9
	_sentryFlushTimeout         time.Duration = 5 * time.Second
	_sentryServerRequestTimeout time.Duration = 5 * time.Second
	_timestampLayout                          = "2006-01-02T15-04-05.000"
)

// SentryHook is an io.Writer for the zap core. It forwards error and fatal
// records to Sentry when running in a reporting environment.
type SentryHook struct {
	appEnv  string
	appName string
	l       *logger.Logger
	capture func(*sentry.Event) *sentry.EventID
}

func NewSentryHook(appEnv, appName, dsn string, isDebug bool) *SentryHook {
	if dsn == "" {
		log.Println("sentry hook: no DSN, events will be dropped")
	}
	sentryTransport := sentry.NewHTTPTransport()
	sentryTransport.Timeout = _sentryServerRequestTimeout
	if err := sentry.Init(
		sentry.ClientOptions{
			AttachStacktrace: true,
			Debug:            isDebug,
			Dsn:              dsn,
			Environment:      appEnv,
			MaxErrorDepth:    _sentryMaxErrorDepth,
			ServerName:       appName,
			Transport:        sentryTransport,
		}); err != nil {
		log.Println("sentry hook init error:", err.Error())
	}
	return newSentryHook(appEnv, appName, sentry.CaptureEvent)
}

func newSentryHook(appEnv, appName string, capture func(*sentry.Event) *sentry.EventID) *SentryHook {
	return &SentryHook{
		appEnv:  appEnv,
		appName: appName,
		capture: capture,
	}
}

func (*SentryHook) mapLevel(zl zapcore.Level) sentry.Level {
	switch zl {
	case zapcore.DebugLevel, zapcore.InvalidLevel:
		return sentry.LevelDebug
	case zapcore.InfoLevel:
		return sentry.LevelInfo
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	case zapcore.ErrorLevel:
		return sentry.LevelError
	case zapcore.FatalLevel, zapcore.PanicLevel:
		return sentry.LevelFatal
	}
	return sentry.LevelDebug
}

type record struct {
	Level      string `json:"level"`
	AppName    string `json:"app_name"`
	AppEnv     string `json:"app_env"`
	CallerFile string `json:"caller_file"`
	CallerLine int    `json:"caller_line"`
	CallerFunc string `json:"caller_func"`
	Stack      string `json:"stack"`
	Message    string `json:"msg"`
	Error      string `json:"error"`
	Query      string `json:"query"`
	Timestamp  string `json:"timestamp"`
}

// Write never fails so the zap multi-writer keeps logging to the other sinks.
func (h *SentryHook) Write(p []byte) (n int, err error) {
	if h.appEnv != "prod" && h.appEnv != "dev" {
		return len(p), nil
	}

	var r record
	if err := json.Unmarshal(p, &r); err != nil {
		h.report(errors.Wrap(err, "[SentryHook] decode zap record"))
		return len(p), nil
	}
	level, err := zapcore.ParseLevel(r.Level)
	if err != nil {
		h.report(errors.Wrap(err, "[SentryHook] parse zap level"))
		return len(p), nil
	}
	if len(r.Message) == 0 || level < zapcore.ErrorLevel {
		return len(p), nil
	}

	timestamp, _ := time.ParseInLocation(_timestampLayout, r.Timestamp, time.UTC)

	event := sentry.NewEvent()
	event.Environment = h.appEnv
	event.Level = h.mapLevel(level)
	event.Timestamp = timestamp
	event.Message = r.Message
	event.Extra["AppName"] = h.appName
	event.Extra["Error"] = r.Error
	event.Extra["CallerFile"] = r.CallerFile
	event.Extra["CallerLine"] = r.CallerLine
	event.Extra["CallerFunc"] = r.CallerFunc
	event.Extra["Stack"] = r.Stack
	if r.Query != "" {
		event.Tags["query"] = r.Query
	}
	event.Exception = append(event.Exception, sentry.Exception{
		Type:       r.Message,
		Value:      r.Error,
		Stacktrace: sentry.NewStacktrace(),
	})
	h.capture(event)

	return len(p), nil
}

func (h *SentryHook) report(err error) {
	if h.l != nil {
		h.l.Warning(err.Error())
		return
	}
	log.Println(err.Error())
}

// SetLogger gives the hook somewhere to report its own decode failures.
// Those are logged at warning level so they never re-enter the hook.
func (h *SentryHook) SetLogger(l *logger.Logger) {
	if l != nil {
		h.l = l
	}
}

func (h *SentryHook) Flush() bool {
	return sentry.Flush(_sentryFlushTimeout)
}
