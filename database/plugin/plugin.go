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

import "fmt"

type Plugin interface {
	Start() error
	Stop() error
}

// ErrorPlugin defers a construction error until Start() is called
type ErrorPlugin struct {
	Err error
}

func (e *ErrorPlugin) Start() error {
	return e.Err
}

func (e *ErrorPlugin) Stop() error {
	return nil
}

func NewErrorPlugin(err error) Plugin {
	return &ErrorPlugin{Err: err}
}

func StartPlugin(pluginType PluginType, pluginName string) (Plugin, error) {
	p := GetPlugin(pluginType, pluginName)
	if p == nil {
		return nil, fmt.Errorf(
			"%s plugin '%s' not found",
			PluginTypeName(pluginType),
			pluginName,
		)
	}
	if err := p.Start(); err != nil {
		return nil, fmt.Errorf(
			"failed to start %s plugin '%s': %w",
			PluginTypeName(pluginType),
			pluginName,
			err,
		)
	}
	return p, nil
}

// SetPluginOption assigns an option value programmatically, with the same
// type checking the command line flags get. Unknown option names are ignored
// so that callers can set options that only some implementations carry
func SetPluginOption(
	pluginType PluginType,
	pluginName string,
	optionName string,
	value any,
) error {
	pluginEntriesMutex.RLock()
	defer pluginEntriesMutex.RUnlock()
	for i := range pluginEntries {
		p := &pluginEntries[i]
		if p.Type != pluginType || p.Name != pluginName {
			continue
		}
		for _, opt := range p.Options {
			if opt.Name != optionName {
				continue
			}
			return assignOption(opt, value)
		}
		return nil
	}
	return fmt.Errorf(
		"plugin %s of type %s not found",
		pluginName,
		PluginTypeName(pluginType),
	)
}

func assignOption(opt PluginOption, value any) error {
	if opt.Dest == nil {
		return fmt.Errorf("nil destination for option %s", opt.Name)
	}
	switch opt.Type {
	case PluginOptionTypeString:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf(
				"invalid type for option %s: expected string",
				opt.Name,
			)
		}
		dest, ok := opt.Dest.(*string)
		if !ok || dest == nil {
			return fmt.Errorf(
				"invalid destination type for option %s: expected *string",
				opt.Name,
			)
		}
		*dest = v
	case PluginOptionTypeBool:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf(
				"invalid type for option %s: expected bool",
				opt.Name,
			)
		}
		dest, ok := opt.Dest.(*bool)
		if !ok || dest == nil {
			return fmt.Errorf(
				"invalid destination type for option %s: expected *bool",
				opt.Name,
			)
		}
		*dest = v
	case PluginOptionTypeInt:
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf(
				"invalid type for option %s: expected int",
				opt.Name,
			)
		}
		dest, ok := opt.Dest.(*int)
		if !ok || dest == nil {
			return fmt.Errorf(
				"invalid destination type for option %s: expected *int",
				opt.Name,
			)
		}
		*dest = v
	case PluginOptionTypeUint:
		dest, ok := opt.Dest.(*uint64)
		if !ok || dest == nil {
			return fmt.Errorf(
				"invalid destination type for option %s: expected *uint64",
				opt.Name,
			)
		}
		switch tv := value.(type) {
		case uint64:
			*dest = tv
		case int:
			if tv < 0 {
				return fmt.Errorf(
					"invalid value for option %s: negative int",
					opt.Name,
				)
			}
			*dest = uint64(tv)
		default:
			return fmt.Errorf(
				"invalid type for option %s: expected uint64 or int",
				opt.Name,
			)
		}
	default:
		return fmt.Errorf(
			"unknown plugin option type %d for option %s",
			opt.Type,
			opt.Name,
		)
	}
	return nil
}
