package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

// Lookup returns the trimmed value of name and whether it was set to something
// non-empty.
func Lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func String(name, def string, log *logger.Logger) string {
	v, ok := Lookup(name)
	if !ok {
		debug(log, name, "Environment variable not found, using default")
		return def
	}
	debug(log, name, "Environment variable found, using environment")
	return v
}

func Int(name string, def int, log *logger.Logger) int {
	v, ok := Lookup(name)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		if log != nil {
			log.Warn("Environment variable could not be parsed as int, using default", "env_var", name, "default", def, "error", err)
		}
		return def
	}
	return i
}

func Bool(name string, def bool, log *logger.Logger) bool {
	v, ok := Lookup(name)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	if log != nil {
		log.Warn("Environment variable could not be parsed as bool, using default", "env_var", name, "default", def)
	}
	return def
}

// Duration accepts Go duration strings ("2s", "500ms") or a bare integer,
// which is read as milliseconds.
func Duration(name string, def time.Duration, log *logger.Logger) time.Duration {
	v, ok := Lookup(name)
	if !ok {
		return def
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		if log != nil {
			log.Warn("Environment variable could not be parsed as duration, using default", "env_var", name, "default", def.String())
		}
		return def
	}
	return d
}

// List splits a comma separated value, dropping blanks.
func List(name string, def []string, log *logger.Logger) []string {
	v, ok := Lookup(name)
	if !ok {
		return def
	}
	out := SplitList(v)
	if len(out) == 0 {
		return def
	}
	debug(log, name, "Environment variable found, using environment")
	return out
}

func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func debug(log *logger.Logger, name, msg string) {
	if log == nil {
		return
	}
	log.Debug(msg, "env_var", name)
}
