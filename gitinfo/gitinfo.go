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

// Package gitinfo captures best-effort git metadata about a scan target. Scan
// targets are frequently working copies, and knowing which commit was scanned
// makes the reports attributable.
package gitinfo

import (
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
)

// Info is the git metadata captured for a scan target.
type Info struct {
	CommitHash  string    `json:"commit_hash"`
	Branch      string    `json:"branch,omitempty"`
	Author      string    `json:"author,omitempty"`
	AuthorEmail string    `json:"author_email,omitempty"`
	CommitTime  time.Time `json:"commit_time"`
	RemoteURL   string    `json:"remote_url,omitempty"`
}

// Lookup collects metadata about the repository containing path. The path does
// not need to be the repository root. Callers treat any error as "not a
// repository" and carry on without metadata.
func Lookup(path string) (*Info, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening repository at %s: %w", path, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("error resolving HEAD: %w", err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("error reading HEAD commit: %w", err)
	}

	info := &Info{
		CommitHash:  head.Hash().String(),
		Author:      commit.Author.Name,
		AuthorEmail: commit.Author.Email,
		CommitTime:  commit.Author.When,
	}

	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}

	if remote, err := repo.Remote(git.DefaultRemoteName); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			info.RemoteURL = urls[0]
		}
	}

	return info, nil
}

// ShortHash returns the abbreviated commit hash used in report descriptions.
func (i *Info) ShortHash() string {
	if len(i.CommitHash) < 8 {
		return i.CommitHash
	}

	return i.CommitHash[:8]
}
