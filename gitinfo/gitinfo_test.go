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

package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))

	worktree, err := repo.Worktree()
	require.NoError(t, err)

	_, err = worktree.Add("main.go")
	require.NoError(t, err)

	hash, err := worktree.Commit("initial commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Dev One",
			Email: "dev@example.com",
			When:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)

	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{"https://example.com/team/app.git"},
	})
	require.NoError(t, err)

	return dir, hash.String()
}

func TestLookup(t *testing.T) {
	dir, commitHash := initRepo(t)

	info, err := Lookup(dir)
	require.NoError(t, err)

	assert.Equal(t, commitHash, info.CommitHash)
	assert.Equal(t, "master", info.Branch)
	assert.Equal(t, "Dev One", info.Author)
	assert.Equal(t, "dev@example.com", info.AuthorEmail)
	assert.Equal(t, "https://example.com/team/app.git", info.RemoteURL)
	assert.False(t, info.CommitTime.IsZero())
}

func TestLookupFromSubdirectory(t *testing.T) {
	dir, commitHash := initRepo(t)

	sub := filepath.Join(dir, "internal", "deep")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	info, err := Lookup(sub)
	require.NoError(t, err)
	assert.Equal(t, commitHash, info.CommitHash)
}

func TestLookupNotARepository(t *testing.T) {
	_, err := Lookup(t.TempDir())
	require.Error(t, err)
}

func TestShortHash(t *testing.T) {
	info := &Info{CommitHash: "0123456789abcdef0123456789abcdef01234567"}
	assert.Equal(t, "01234567", info.ShortHash())

	assert.Equal(t, "abc", (&Info{CommitHash: "abc"}).ShortHash())
}
