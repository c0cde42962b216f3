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
	"sort"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

type PluginType int

const (
	PluginTypeBlob PluginType = iota + 1
	PluginTypeMetadata
)

func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeBlob:
		return "blob"
	case PluginTypeMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota + 1
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

type PluginOption struct {
	DefaultValue any
	Dest         any
	Name         string
	Description  string
	Type         PluginOptionType
}

type PluginEntry struct {
	NewFromOptionsFunc func() Plugin
	Name               string
	Description        string
	Options            []PluginOption
	Type               PluginType
}

var (
	pluginEntries      []PluginEntry
	pluginEntriesMutex sync.RWMutex
)

// Register adds a plugin to the registry. Registering the same type and name
// again replaces the earlier entry
func Register(pluginEntry PluginEntry) {
	pluginEntriesMutex.Lock()
	defer pluginEntriesMutex.Unlock()
	for i := range pluginEntries {
		if pluginEntries[i].Type == pluginEntry.Type &&
			pluginEntries[i].Name == pluginEntry.Name {
			pluginEntries[i] = pluginEntry
			return
		}
	}
	pluginEntries = append(pluginEntries, pluginEntry)
}

// GetPlugins returns the registered plugins of the given type, sorted by name
func GetPlugins(pluginType PluginType) []PluginEntry {
	pluginEntriesMutex.RLock()
	defer pluginEntriesMutex.RUnlock()
	ret := []PluginEntry{}
	for _, entry := range pluginEntries {
		if entry.Type == pluginType {
			ret = append(ret, entry)
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Name < ret[j].Name
	})
	return ret
}

// GetPlugin creates a new instance of the named plugin from its current options
func GetPlugin(pluginType PluginType, pluginName string) Plugin {
	pluginEntriesMutex.RLock()
	var newFunc func() Plugin
	for _, entry := range pluginEntries {
		if entry.Type == pluginType && entry.Name == pluginName {
			newFunc = entry.NewFromOptionsFunc
			break
		}
	}
	pluginEntriesMutex.RUnlock()
	if newFunc == nil {
		return nil
	}
	return newFunc()
}

// PopulateCmdlineOptions adds a flag for every plugin option, named
// <type>-<plugin>-<option>
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	pluginEntriesMutex.RLock()
	defer pluginEntriesMutex.RUnlock()
	for _, entry := range pluginEntries {
		for _, option := range entry.Options {
			flagName := strings.Join(
				[]string{
					PluginTypeName(entry.Type),
					entry.Name,
					option.Name,
				},
				"-",
			)
			if err := addFlag(fs, flagName, option); err != nil {
				return err
			}
		}
	}
	return nil
}

func addFlag(fs *pflag.FlagSet, flagName string, option PluginOption) error {
	switch option.Type {
	case PluginOptionTypeString:
		dest, ok := option.Dest.(*string)
		if !ok {
			return fmt.Errorf("invalid destination type for option %s", flagName)
		}
		defaultValue, _ := option.DefaultValue.(string)
		fs.StringVar(dest, flagName, defaultValue, option.Description)
	case PluginOptionTypeBool:
		dest, ok := option.Dest.(*bool)
		if !ok {
			return fmt.Errorf("invalid destination type for option %s", flagName)
		}
		defaultValue, _ := option.DefaultValue.(bool)
		fs.BoolVar(dest, flagName, defaultValue, option.Description)
	case PluginOptionTypeInt:
		dest, ok := option.Dest.(*int)
		if !ok {
			return fmt.Errorf("invalid destination type for option %s", flagName)
		}
		defaultValue, _ := option.DefaultValue.(int)
		fs.IntVar(dest, flagName, defaultValue, option.Description)
	case PluginOptionTypeUint:
		dest, ok := option.Dest.(*uint64)
		if !ok {
			return fmt.Errorf("invalid destination type for option %s", flagName)
		}
		defaultValue, _ := option.DefaultValue.(uint64)
		fs.Uint64Var(dest, flagName, defaultValue, option.Description)
	default:
		return fmt.Errorf(
			"unknown plugin option type %d for option %s",
			option.Type,
			flagName,
		)
	}
	return nil
}
