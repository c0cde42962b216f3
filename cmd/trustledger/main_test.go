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

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListPlugins(t *testing.T) {
	shouldExit, output := listPlugins("badger", "sqlite")
	assert.False(t, shouldExit)
	assert.Empty(t, output)

	shouldExit, output = listPlugins("list", "sqlite")
	assert.True(t, shouldExit)
	assert.Contains(t, output, "Available blob plugins:")
	assert.Contains(t, output, "badger:")
	assert.NotContains(t, output, "metadata plugins")

	shouldExit, output = listPlugins("list", "list")
	assert.True(t, shouldExit)
	assert.Contains(t, output, "Available metadata plugins:")
	assert.Contains(t, output, "sqlite:")
	assert.Contains(t, output, "postgres:")
	assert.Contains(t, output, "mysql:")
}

func TestListAllPlugins(t *testing.T) {
	output := listAllPlugins()
	assert.Contains(t, output, "Blob Storage Plugins:")
	assert.Contains(t, output, "Metadata Storage Plugins:")
	assert.Contains(t, output, "badger:")
}

func TestRootCommand(t *testing.T) {
	rootCmd := newRootCommand()
	for _, name := range []string{
		"serve",
		"list",
		"version",
		"account",
		"accounts",
		"badge",
		"settings",
		"reindex",
		"fund",
		"encrypt-config",
	} {
		cmd, _, err := rootCmd.Find([]string{name})
		assert.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	flags := rootCmd.PersistentFlags()
	for _, name := range []string{
		"debug",
		"config",
		"blob",
		"metadata",
		"blob-badger-data-dir",
		"metadata-sqlite-data-dir",
	} {
		assert.NotNil(t, flags.Lookup(name), name)
	}
}
