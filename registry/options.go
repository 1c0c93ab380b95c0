// Copyright 2025 The Link2Trust Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package registry

import "time"

// Configurer describes a single configuration option an Entity in a Registry exposes.
type Configurer interface {
	Name() string
	Description() string
}

// ConfigOption is a type erased configuration option for an Entity. The Setter is
// responsible for applying a value of TVal to an Entity of type T.
type ConfigOption[T any, TVal any] struct {
	name        string
	description string
	defaultVal  TVal
	setter      func(T, TVal) (T, error)
}

func (co *ConfigOption[T, TVal]) Name() string {
	return co.name
}

func (co *ConfigOption[T, TVal]) Description() string {
	return co.description
}

func (co *ConfigOption[T, TVal]) DefaultVal() TVal {
	return co.defaultVal
}

func (co *ConfigOption[T, TVal]) Setter() func(T, TVal) (T, error) {
	return co.setter
}

func NewConfigOption[T any, TVal any](name string, description string, defaultVal TVal, setter func(T, TVal) (T, error)) *ConfigOption[T, TVal] {
	return &ConfigOption[T, TVal]{
		name:        name,
		description: description,
		defaultVal:  defaultVal,
		setter:      setter,
	}
}

func IntConfigOption[T any](name string, description string, defaultVal int, setter func(T, int) (T, error)) *ConfigOption[T, int] {
	return NewConfigOption(name, description, defaultVal, setter)
}

func StringConfigOption[T any](name string, description string, defaultVal string, setter func(T, string) (T, error)) *ConfigOption[T, string] {
	return NewConfigOption(name, description, defaultVal, setter)
}

func StringSliceConfigOption[T any](name string, description string, defaultVal []string, setter func(T, []string) (T, error)) *ConfigOption[T, []string] {
	return NewConfigOption(name, description, defaultVal, setter)
}

func BoolConfigOption[T any](name string, description string, defaultVal bool, setter func(T, bool) (T, error)) *ConfigOption[T, bool] {
	return NewConfigOption(name, description, defaultVal, setter)
}

func DurationConfigOption[T any](name string, description string, defaultVal time.Duration, setter func(T, time.Duration) (T, error)) *ConfigOption[T, time.Duration] {
	return NewConfigOption(name, description, defaultVal, setter)
}
