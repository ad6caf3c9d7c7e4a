package rlog

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override store keys,
// e.g. RLOG_LEVEL or RLOG_WRITER2_LEVEL.
const EnvPrefix = "RLOG"

// keyDelimiter keeps dotted store keys such as "writer.level" flat in viper.
const keyDelimiter = "::"

// envKeys are bound to the environment even when the config file does not set them.
var envKeys = []string{
	"level",
	"writer", "writer.level", "writer.format", "writer.stream", "writer.color",
	fileWriter, fileWriter + ".level", fileWriter + ".file", fileWriter + ".latest",
	fileWriter + ".policies", fileWriter + ".backups", fileWriter + ".buffered",
	fileWriter + ".compress", fileWriter + ".charset",
}

// LoadConfig reads store values from a YAML, TOML or JSON file, then applies
// environment overrides. envFiles are loaded into the environment first with
// godotenv, without replacing variables that are already set. An empty path
// reads the environment only.
//
// Writer keys are written flat, e.g. "writer.level: debug", since the writer key
// itself holds the writer type.
func LoadConfig(path string, envFiles ...string) (map[string]string, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("%w: env file: %v", ErrInvalidConfig, err)
		}
	}

	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	return viperValues(v), nil
}

// LoadStore is LoadConfig into a new store.
func LoadStore(path string, envFiles ...string) (*Store, error) {
	values, err := LoadConfig(path, envFiles...)
	if err != nil {
		return nil, err
	}
	return NewStore(values), nil
}

func newViper() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", keyDelimiter, "_", " ", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// viperValues flattens every key viper knows about into store form.
func viperValues(v *viper.Viper) map[string]string {
	values := make(map[string]string)
	for _, key := range v.AllKeys() {
		value := v.GetString(key)
		if value == "" {
			continue
		}
		values[strings.ReplaceAll(key, keyDelimiter, ".")] = value
	}
	return values
}

// Watcher applies changes of a config file to an adapter.
type Watcher struct {
	adapter *Adapter
	viper   *viper.Viper
	log     *Logger

	mu      sync.Mutex
	applied map[string]string
	onError func(error)
}

// WatchConfig loads path into the adapter store, rebuilds, and keeps watching the
// file. On every change the keys it set before are replaced with the new content
// and the adapter is rebuilt. Keys set by other means, such as EnableFileLogging,
// are kept.
func WatchConfig(a *Adapter, path string) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty config path", ErrInvalidConfig)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	w := &Watcher{
		adapter: a,
		viper:   newViper(),
		log:     NewLogger(a),
	}
	w.viper.SetConfigFile(path)
	if err := w.viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := w.apply(); err != nil {
		return nil, err
	}

	w.viper.OnConfigChange(w.changed)
	w.viper.WatchConfig()
	return w, nil
}

// OnError sets a callback for reload failures. By default they are logged as warnings.
func (w *Watcher) OnError(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = fn
}

func (w *Watcher) changed(e fsnotify.Event) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}
	if err := w.apply(); err != nil {
		w.mu.Lock()
		fn := w.onError
		w.mu.Unlock()
		if fn != nil {
			fn(err)
			return
		}
		w.log.WarnErrMsg(err, "config reload of "+e.Name)
	}
}

func (w *Watcher) apply() error {
	w.mu.Lock()
	values := viperValues(w.viper)
	store := w.adapter.Store()
	for key := range w.applied {
		if _, ok := values[key]; !ok {
			store.Delete(key)
		}
	}
	store.SetAll(values)
	w.applied = values
	w.mu.Unlock()

	return w.adapter.Rebuild()
}

// getConfigValue returns defaultVal if cfgVal equals the zero value for type T,
// otherwise returns cfgVal.
func getConfigValue[T comparable](defaultVal, cfgVal T) T {
	var zero T
	if cfgVal == zero {
		return defaultVal
	}
	return cfgVal
}
