package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/squarefactory/cobalt-api/policy"
	"github.com/squarefactory/cobalt-api/scheduler"
	"gopkg.in/yaml.v3"
)

const defaultListenAddress = ":8080"

type Config struct {
	ListenAddress string                  `yaml:"listen_address"`
	Log           Log                     `yaml:"log"`
	Scheduler     Scheduler               `yaml:"scheduler"`
	Policy        policy.Config           `yaml:"policy"`
	QueueDefaults scheduler.QueueDefaults `yaml:"queue_defaults"`
	// QueueDefaultsHTML is a saved wiki page listing the node count of each
	// queue in a table.
	QueueDefaultsHTML string `yaml:"queue_defaults_html"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Scheduler struct {
	// BinDir holds qstat, qsub and friends. Empty means $PATH.
	BinDir    string `yaml:"bin_dir"`
	ScriptDir string `yaml:"script_dir"`
	// User overrides the local OS user.
	User string `yaml:"user"`
}

func Default() *Config {
	return &Config{
		ListenAddress: defaultListenAddress,
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Policy:        policy.DefaultConfig(),
		QueueDefaults: scheduler.QueueDefaults{},
	}
}

// Load reads the configuration at path, or at $CONFIG_PATH when path is
// empty. Without any file the defaults are returned. $LISTEN_ADDRESS
// overrides listen_address.
func Load(path string) (*Config, error) {
	config := Default()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	if path != "" {
		cb, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(cb, config); err != nil {
			return nil, fmt.Errorf("invalid yaml config %s: %w", path, err)
		}
		logrus.WithField("path", path).Debug("loaded config")
	}

	if config.QueueDefaultsHTML != "" {
		f, err := os.Open(config.QueueDefaultsHTML)
		if err != nil {
			return nil, fmt.Errorf("failed to open queue defaults page: %w", err)
		}
		defer f.Close()
		imported, err := LoadQueueDefaultsHTML(f)
		if err != nil {
			return nil, err
		}
		if config.QueueDefaults == nil {
			config.QueueDefaults = scheduler.QueueDefaults{}
		}
		// explicit queue_defaults entries win over the page
		for name, d := range imported {
			if _, ok := config.QueueDefaults[name]; !ok {
				config.QueueDefaults[name] = d
			}
		}
	}

	if listenAddress := os.Getenv("LISTEN_ADDRESS"); listenAddress != "" {
		config.ListenAddress = listenAddress
	}
	return config, nil
}

// SetupLogging applies the log section to the standard logrus logger.
func (c *Config) SetupLogging() error {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(level)
	switch c.Log.Format {
	case "", "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	return nil
}
