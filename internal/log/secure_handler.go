package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// sensitiveKeys contains attribute keys whose values are always masked.
var sensitiveKeys = map[string]bool{
	// HTTP headers and cookies set by the target platform
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"auth_token":          true,
	"ct0":                 true,
	"x-csrf-token":        true,

	// Credentials read from the environment
	"password":           true,
	"passwd":             true,
	"proxy_password":     true,
	"platform_password":  true,
	"proxymesh_password": true,
	"twitter_password":   true,

	// Store connection strings may embed credentials
	"dsn":          true,
	"mongo_uri":    true,
	"database_url": true,
}

// sensitiveKeywords mark a key as secret when contained anywhere in it.
// The bare "key" is left out: "trend_key" or "primary_key" are not secrets.
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "credential", "cookie",
}

// sensitivePatterns match values that are secrets regardless of their key.
var sensitivePatterns = []*regexp.Regexp{
	// JWT
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	// Bearer and Basic authorization values
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
}

// userinfoPattern finds "scheme://user:pass@" prefixes inside longer strings.
var userinfoPattern = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9+.-]*://)([^/@\s:]+):([^/@\s]+)@`)

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// SecureHandler wraps an slog.Handler and masks secrets before records reach it.
// Keys listed in sensitiveKeys or containing a sensitive keyword are replaced
// entirely; passwords embedded in proxy or store URLs are replaced in place.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// A nil handler falls back to slog.Default().Handler().
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled delegates to the wrapped handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it on.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, redactURLCredentials(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs masks attrs before handing them to the wrapped handler.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(out)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			out[i] = sanitizeAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}

	key := strings.ToLower(a.Key)
	if sensitiveKeys[key] || containsSensitiveKeyword(key) {
		return slog.String(a.Key, MaskValue)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if isSensitiveValue(s) {
			return slog.String(a.Key, MaskValue)
		}
		if r := redactURLCredentials(s); r != s {
			return slog.String(a.Key, r)
		}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			msg := err.Error()
			if r := redactURLCredentials(msg); r != msg {
				return slog.String(a.Key, r)
			}
		}
	}

	return a
}

func containsSensitiveKeyword(key string) bool {
	for _, kw := range sensitiveKeywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

func isSensitiveValue(value string) bool {
	for _, p := range sensitivePatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// redactURLCredentials replaces the password of every "scheme://user:pass@"
// occurrence with MaskValue, keeping the user name for debugging.
func redactURLCredentials(s string) string {
	if !strings.Contains(s, "@") {
		return s
	}
	return userinfoPattern.ReplaceAllStringFunc(s, func(m string) string {
		sub := userinfoPattern.FindStringSubmatch(m)
		user, err := url.PathUnescape(sub[2])
		if err != nil {
			user = sub[2]
		}
		return sub[1] + user + ":" + MaskValue + "@"
	})
}

// levelFor maps the verbose flag to a level: Debug when verbose, otherwise Warn.
func levelFor(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewSecureLogger creates a logger that masks secrets.
// Output to a terminal is colored with tint; anything else gets slog's text format.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return NewSecureLoggerWithLevel(w, levelFor(verbose))
}

// NewSecureLoggerWithLevel is NewSecureLogger with an explicit level.
// The serve command logs at Info so each triggered run is visible.
func NewSecureLoggerWithLevel(w io.Writer, level slog.Level) *slog.Logger {
	var handler slog.Handler
	if isTerminal(w) {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}
	return slog.New(NewSecureHandler(handler))
}

// NewSecureJSONLogger creates a logger that masks secrets and writes JSON lines.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: levelFor(verbose)})
	return slog.New(NewSecureHandler(handler))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
