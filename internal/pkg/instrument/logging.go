package instrument

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const maskedValue = "***"

type logOptions struct {
	level   slog.Level
	service string
	// format is "json" or "text".
	format string
	mask   []string
	// lp, when set, receives a copy of every record over OTLP.
	lp *sdklog.LoggerProvider
}

func installLogger(cfg *Config, lp *sdklog.LoggerProvider) {
	w := cfg.LogWriter
	if w == nil {
		w = os.Stderr
	}
	slog.SetDefault(newLogger(w, logOptions{
		level:   ParseLevel(cfg.LogLevel),
		service: cfg.ServiceName,
		format:  cfg.LogFormat,
		mask:    cfg.MaskFields,
		lp:      lp,
	}))
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(w io.Writer, o logOptions) *slog.Logger {
	hopts := &slog.HandlerOptions{
		Level:       o.level,
		AddSource:   true,
		ReplaceAttr: renameAttr,
	}

	var local slog.Handler
	if strings.EqualFold(o.format, "text") {
		local = slog.NewTextHandler(w, hopts)
	} else {
		local = slog.NewJSONHandler(w, hopts)
	}

	out := local
	if o.lp != nil {
		out = fanout{local, otelslog.NewHandler(o.service, otelslog.WithLoggerProvider(o.lp))}
	}

	return slog.New(&enrichHandler{
		next:    &maskHandler{next: out, keys: newMasker(o.mask)},
		service: o.service,
	})
}

// renameAttr shortens the built-in keys and keeps only sources under
// internal/, rendered as "internal/<path>:<line>".
func renameAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.SourceKey:
		src, ok := a.Value.Any().(*slog.Source)
		if !ok {
			return a
		}
		_, rel, found := strings.Cut(src.File, "/internal/")
		if !found {
			return slog.Attr{}
		}
		return slog.String("file", "internal/"+rel+":"+strconv.Itoa(src.Line))
	}
	return a
}

// enrichHandler stamps the correlation id and service name on each record.
type enrichHandler struct {
	next    slog.Handler
	service string
}

func (h *enrichHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *enrichHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetCorrelationID(ctx); id != "" {
		r.AddAttrs(slog.String("_cID", id))
	}
	if h.service != "" {
		r.AddAttrs(slog.String("service", h.service))
	}
	return h.next.Handle(ctx, r)
}

func (h *enrichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &enrichHandler{next: h.next.WithAttrs(attrs), service: h.service}
}

func (h *enrichHandler) WithGroup(name string) slog.Handler {
	return &enrichHandler{next: h.next.WithGroup(name), service: h.service}
}

// fanout writes each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	return lo.SomeBy(f, func(h slog.Handler) bool { return h.Enabled(ctx, l) })
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return fanout(lo.Map(f, func(h slog.Handler, _ int) slog.Handler { return h.WithAttrs(attrs) }))
}

func (f fanout) WithGroup(name string) slog.Handler {
	return fanout(lo.Map(f, func(h slog.Handler, _ int) slog.Handler { return h.WithGroup(name) }))
}

// masker holds lower-cased attribute keys whose values must never be logged.
type masker map[string]struct{}

func newMasker(fields []string) masker {
	keys := lo.Compact(lo.Map(fields, func(f string, _ int) string {
		return strings.ToLower(strings.TrimSpace(f))
	}))
	return lo.SliceToMap(keys, func(k string) (string, struct{}) { return k, struct{}{} })
}

func (m masker) hit(key string) bool {
	_, ok := m[strings.ToLower(key)]
	return ok
}

func (m masker) attr(a slog.Attr) slog.Attr {
	if m.hit(a.Key) {
		return slog.String(a.Key, maskedValue)
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		a.Value = slog.GroupValue(lo.Map(a.Value.Group(), func(ga slog.Attr, _ int) slog.Attr {
			return m.attr(ga)
		})...)
	case slog.KindString:
		if s, ok := m.jsonText([]byte(a.Value.String())); ok {
			a.Value = slog.StringValue(s)
		}
	case slog.KindAny:
		switch v := a.Value.Any().(type) {
		case map[string]any, []any:
			a.Value = slog.AnyValue(m.value(v))
		case map[string]string:
			a.Value = slog.AnyValue(m.value(lo.MapValues(v, func(s, _ string) any { return s })))
		case []byte:
			if s, ok := m.jsonText(v); ok {
				a.Value = slog.StringValue(s)
			}
		}
	}

	return a
}

// jsonText masks a JSON object or array payload. It reports false when b is
// not JSON so the caller keeps the original value.
func (m masker) jsonText(b []byte) (string, bool) {
	if len(b) == 0 || (b[0] != '{' && b[0] != '[') {
		return "", false
	}
	var body any
	if err := json.Unmarshal(b, &body); err != nil {
		return "", false
	}
	out, err := json.Marshal(m.value(body))
	if err != nil {
		return "", false
	}
	return string(out), true
}

func (m masker) value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return lo.MapEntries(val, func(k string, inner any) (string, any) {
			if m.hit(k) {
				return k, maskedValue
			}
			return k, m.value(inner)
		})
	case []any:
		return lo.Map(val, func(inner any, _ int) any { return m.value(inner) })
	default:
		return v
	}
}

type maskHandler struct {
	next slog.Handler
	keys masker
}

func (h *maskHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *maskHandler) Handle(ctx context.Context, r slog.Record) error {
	if len(h.keys) == 0 {
		return h.next.Handle(ctx, r)
	}
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.keys.attr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *maskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := attrs
	if len(h.keys) > 0 {
		masked = lo.Map(attrs, func(a slog.Attr, _ int) slog.Attr { return h.keys.attr(a) })
	}
	return &maskHandler{next: h.next.WithAttrs(masked), keys: h.keys}
}

func (h *maskHandler) WithGroup(name string) slog.Handler {
	return &maskHandler{next: h.next.WithGroup(name), keys: h.keys}
}
