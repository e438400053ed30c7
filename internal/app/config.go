package app

import (
	"os"
	"path/filepath"

	"github.com/viddec/viddec/pkg/shell"
	"github.com/viddec/viddec/pkg/yaml"
)

const defaultConfig = "viddec.yaml"

var ConfigPath string

var configs [][]byte

func LoadConfig(v any) {
	for _, data := range configs {
		if err := yaml.Unmarshal(data, v); err != nil {
			Logger.Warn().Err(err).Msg("[app] read config")
		}
	}
}

// initConfig collects config documents in the order they apply: files and
// raw YAML from flags, then single values
func initConfig(confs, sets []string) error {
	configs = nil
	ConfigPath = ""

	if confs == nil {
		if _, err := os.Stat(defaultConfig); err == nil {
			confs = []string{defaultConfig}
		}
	}

	for _, conf := range confs {
		if len(conf) == 0 {
			continue
		}

		if conf[0] == '{' {
			// config as raw YAML or JSON
			configs = append(configs, []byte(conf))
			continue
		}

		// config as file
		data, err := os.ReadFile(conf)
		if err != nil {
			return err
		}

		if ConfigPath == "" {
			ConfigPath = conf
		}

		configs = append(configs, []byte(shell.ReplaceEnvVars(string(data))))
	}

	for _, set := range sets {
		data, err := yaml.Override(set)
		if err != nil {
			return err
		}
		configs = append(configs, data)
	}

	if ConfigPath != "" {
		if path, err := filepath.Abs(ConfigPath); err == nil {
			ConfigPath = path
		}
		Info["config_path"] = ConfigPath
	}

	return nil
}
