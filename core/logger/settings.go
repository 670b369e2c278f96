package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	coreconfig "github.com/m3rciful/counterbot/core/config"
)

const (
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 5

	defaultSampleNum = 1
	defaultSampleDen = 50
)

// settings is the logging section resolved into handler parameters.
type settings struct {
	format    logFormat
	order     []string
	level     slog.Level
	sampleNum int
	sampleDen int
	profile   string
	trace     bool
}

func settingsFrom(cfg *coreconfig.Config) settings {
	s := settings{
		format:    formatJSON,
		order:     append([]string(nil), defaultKeyOrder...),
		level:     slog.LevelInfo,
		sampleNum: defaultSampleNum,
		sampleDen: defaultSampleDen,
		trace:     truthy(os.Getenv("TRACE")) || truthy(os.Getenv("LOG_TRACE")),
	}
	if cfg == nil {
		return s
	}
	lc := cfg.Logging

	s.profile = "prod"
	if p := strings.TrimSpace(lc.Profile); p != "" {
		s.profile = strings.ToLower(p)
	}

	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		s.format = formatKV
	case "json":
	default:
		if s.profile == "debug" || s.profile == "dev" {
			s.format = formatKV
		}
	}

	if order := splitKeys(lc.KeysOrder); len(order) > 0 {
		s.order = order
	}

	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		s.level = slog.LevelDebug
	case "warn", "warning":
		s.level = slog.LevelWarn
	case "error":
		s.level = slog.LevelError
	}

	if spec := strings.TrimSpace(lc.DebugSample); spec != "" {
		switch num, den := parseRatioSpec(spec); {
		case num == 0 && den == 0:
			s.sampleNum, s.sampleDen = 0, 0
		case num > 0 && den > 0:
			s.sampleNum, s.sampleDen = num, den
		}
	}
	return s
}

func splitKeys(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// openSinks returns stdout plus, when logging.dir and logging.bot_file are set, a rotating file.
func openSinks(cfg *coreconfig.Config) ([]io.Writer, []io.Closer) {
	sinks := []io.Writer{os.Stdout}
	if cfg == nil {
		return sinks, nil
	}
	dir := strings.TrimSpace(cfg.Logging.Dir)
	file := strings.TrimSpace(cfg.Logging.BotFile)
	if dir == "" || file == "" {
		return sinks, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("logger: failed to create log dir %s: %v", dir, err)
		return sinks, nil
	}
	rotating := newRotatingFile(filepath.Join(dir, file), cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups)
	return append(sinks, rotating), []io.Closer{rotating}
}

// newRotatingFile returns a size-rotated file sink; zero limits fall back to 10 MB x 5 backups.
func newRotatingFile(path string, maxSizeMB, maxBackups int) *lumberjack.Logger {
	if maxSizeMB <= 0 {
		maxSizeMB = defaultMaxSizeMB
	}
	if maxBackups <= 0 {
		maxBackups = defaultMaxBackups
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}
}
