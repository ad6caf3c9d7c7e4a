package rlog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Writer types understood by the backend.
const (
	writerConsole = "console"
	writerRolling = "rolling file"
)

const (
	defaultFormat   = "{date:yyyy-MM-dd HH:mm:ss.SSS} | {level|min-size=5} | {message}"
	defaultCharset  = "UTF-8"
	defaultFlush    = time.Second
	unlimitedBackup = -1
)

// writerSpec is one writer definition decoded from the store, e.g. all "writer2.*" keys.
type writerSpec struct {
	name     string
	kind     string
	level    Level
	format   string
	provider string

	// rolling file
	file     string
	latest   string
	charset  string
	buffered bool
	flush    time.Duration
	maxSize  int64
	startup  bool
	backups  int
	compress bool

	// console
	stream Level // entries at or above go to stderr
	color  string
}

// settings is the decoded, validated content of a store snapshot.
type settings struct {
	level     Level
	tagLevels map[string]Level
	writers   []writerSpec
}

// parseSettings validates a store snapshot and decodes it into settings.
func parseSettings(values map[string]string) (*settings, error) {
	s := &settings{
		level:     LevelTrace,
		tagLevels: make(map[string]Level),
	}

	if v, ok := values["level"]; ok {
		lvl, err := ParseLevel(v)
		if err != nil {
			return nil, fmt.Errorf("level: %w", err)
		}
		s.level = lvl
	}

	var names []string
	for key, value := range values {
		if tag, ok := strings.CutPrefix(key, "level@"); ok {
			lvl, err := ParseLevel(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			s.tagLevels[tag] = lvl
			continue
		}
		if isWriterKey(key) {
			names = append(names, key)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		w, err := parseWriter(name, values)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		s.writers = append(s.writers, w)
	}
	return s, nil
}

// parseWriter decodes the properties of the writer called name.
func parseWriter(name string, values map[string]string) (writerSpec, error) {
	prop := func(key string) string {
		return strings.TrimSpace(values[name+"."+key])
	}

	w := writerSpec{
		name:     name,
		kind:     strings.ToLower(strings.TrimSpace(values[name])),
		level:    LevelTrace,
		format:   getConfigValue(defaultFormat, values[name+".format"]),
		provider: prop("provider"),
	}

	if v := prop("level"); v != "" {
		lvl, err := ParseLevel(v)
		if err != nil {
			return w, err
		}
		w.level = lvl
	}

	switch w.kind {
	case writerConsole:
		w.stream = LevelWarn
		if v := prop("stream"); v != "" {
			lvl, err := parseStream(v)
			if err != nil {
				return w, err
			}
			w.stream = lvl
		}
		w.color = strings.ToLower(getConfigValue("auto", prop("color")))
		switch w.color {
		case "auto", "true", "false":
		default:
			return w, fmt.Errorf("%w: color %q", ErrInvalidConfig, w.color)
		}

	case writerRolling:
		w.file = prop("file")
		if w.file == "" {
			return w, fmt.Errorf("%w: missing file", ErrInvalidConfig)
		}
		w.latest = prop("latest")
		w.charset = getConfigValue(defaultCharset, prop("charset"))
		w.backups = unlimitedBackup
		w.flush = defaultFlush

		var err error
		if v := prop("buffered"); v != "" {
			if w.buffered, err = strconv.ParseBool(v); err != nil {
				return w, fmt.Errorf("%w: buffered %q", ErrInvalidConfig, v)
			}
		}
		if v := prop("compress"); v != "" {
			if w.compress, err = strconv.ParseBool(v); err != nil {
				return w, fmt.Errorf("%w: compress %q", ErrInvalidConfig, v)
			}
		}
		if v := prop("backups"); v != "" {
			if w.backups, err = strconv.Atoi(v); err != nil || w.backups < 0 {
				return w, fmt.Errorf("%w: backups %q", ErrInvalidConfig, v)
			}
		}
		if v := prop("flush"); v != "" {
			if w.flush, err = time.ParseDuration(v); err != nil || w.flush <= 0 {
				return w, fmt.Errorf("%w: flush %q", ErrInvalidConfig, v)
			}
		}
		if err := w.parsePolicies(prop("policies")); err != nil {
			return w, err
		}

	default:
		return w, fmt.Errorf("%w: %q", ErrUnknownWriter, w.kind)
	}
	return w, nil
}

// parsePolicies reads a comma separated policy list such as "startup, size: 25mb".
func (w *writerSpec) parsePolicies(policies string) error {
	if policies == "" {
		return nil
	}
	for _, p := range strings.Split(policies, ",") {
		name, arg, _ := strings.Cut(strings.TrimSpace(p), ":")
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "size":
			n, err := parseSize(arg)
			if err != nil {
				return err
			}
			w.maxSize = n
		case "startup":
			w.startup = true
		default:
			return fmt.Errorf("%w: %q", ErrInvalidPolicy, p)
		}
	}
	return nil
}

// parseStream reads the console stream threshold: "err" sends everything to stderr,
// "out" nothing, a level name everything at or above that level.
func parseStream(v string) (Level, error) {
	switch strings.ToLower(v) {
	case "err", "stderr":
		return LevelTrace, nil
	case "out", "stdout":
		return LevelOff, nil
	default:
		return ParseLevel(v)
	}
}

// parseSize converts "25mb", "512 KB" or "100" (bytes) to a byte count.
func parseSize(s string) (int64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	mult := int64(1)
	for _, u := range []struct {
		suffix string
		mult   int64
	}{
		{"gb", 1 << 30},
		{"mb", 1 << 20},
		{"kb", 1 << 10},
		{"b", 1},
	} {
		if rest, ok := strings.CutSuffix(s, u.suffix); ok {
			s, mult = strings.TrimSpace(rest), u.mult
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: size %q", ErrInvalidPolicy, s)
	}
	return n * mult, nil
}

// effectiveLevel is the most restrictive of the global and the writer level.
func (s *settings) effectiveLevel(w writerSpec) Level {
	return max(s.level, w.level)
}
