// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package plugin

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvVarPrefix is prepended to the environment variable that overrides each
// plugin option: TRUSTLEDGER_<TYPE>_<PLUGIN>_<OPTION>
const EnvVarPrefix = "TRUSTLEDGER"

func pluginTypeFromName(name string) (PluginType, error) {
	switch name {
	case "blob":
		return PluginTypeBlob, nil
	case "metadata":
		return PluginTypeMetadata, nil
	default:
		return 0, fmt.Errorf("unknown plugin type: %s", name)
	}
}

// ProcessConfig applies plugin options from a config file, keyed by plugin
// type, then plugin name, then option name
func ProcessConfig(pluginConfig map[string]map[string]map[string]any) error {
	for typeName, plugins := range pluginConfig {
		pluginType, err := pluginTypeFromName(typeName)
		if err != nil {
			return err
		}
		for pluginName, options := range plugins {
			for optionName, value := range options {
				err := SetPluginOption(
					pluginType,
					pluginName,
					optionName,
					value,
				)
				if err != nil {
					return fmt.Errorf(
						"%s plugin %s: %w",
						typeName,
						pluginName,
						err,
					)
				}
			}
		}
	}
	return nil
}

func envVarName(pluginType PluginType, pluginName, optionName string) string {
	name := strings.Join(
		[]string{
			EnvVarPrefix,
			PluginTypeName(pluginType),
			pluginName,
			optionName,
		},
		"_",
	)
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// ProcessEnvVars overrides plugin options from the environment
func ProcessEnvVars() error {
	pluginEntriesMutex.RLock()
	defer pluginEntriesMutex.RUnlock()
	for _, entry := range pluginEntries {
		for _, option := range entry.Options {
			name := envVarName(entry.Type, entry.Name, option.Name)
			raw, ok := os.LookupEnv(name)
			if !ok {
				continue
			}
			value, err := parseOptionValue(option.Type, raw)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if err := assignOption(option, value); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return nil
}

func parseOptionValue(optionType PluginOptionType, raw string) (any, error) {
	switch optionType {
	case PluginOptionTypeString:
		return raw, nil
	case PluginOptionTypeBool:
		return strconv.ParseBool(raw)
	case PluginOptionTypeInt:
		return strconv.Atoi(raw)
	case PluginOptionTypeUint:
		return strconv.ParseUint(raw, 10, 64)
	default:
		return nil, fmt.Errorf("unknown plugin option type %d", optionType)
	}
}
