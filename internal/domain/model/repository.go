package model

import (
	"encoding/json"
	"strings"
)

// WatchedRepository is a single entry of the watch list. Name is the canonical
// "owner/repo" identifier returned by GitHub and is the entry's natural key.
type WatchedRepository struct {
	Name string `json:"name"`
}

// RepositoryOwner is the account that owns a repository.
type RepositoryOwner struct {
	Login     string
	AvatarURL string
}

// RepositoryDetail holds the repository metadata shown at the top of the
// issue browser.
type RepositoryDetail struct {
	FullName    string
	Name        string
	Description string
	Owner       RepositoryOwner
}

// EncodeWatchlist serializes the watch list into its persisted byte form, a
// JSON array of {"name": "..."} objects.
func EncodeWatchlist(repos []WatchedRepository) ([]byte, error) {
	if repos == nil {
		repos = []WatchedRepository{}
	}
	return json.Marshal(repos)
}

// DecodeWatchlist parses a persisted watch list. Absent or unparsable data
// yields an empty list rather than an error. Entries with an empty name are
// dropped and repeated names collapse to their first occurrence.
func DecodeWatchlist(data []byte) []WatchedRepository {
	if len(data) == 0 {
		return []WatchedRepository{}
	}

	var stored []WatchedRepository
	if err := json.Unmarshal(data, &stored); err != nil {
		return []WatchedRepository{}
	}

	repos := make([]WatchedRepository, 0, len(stored))
	seen := make(map[string]bool, len(stored))
	for _, r := range stored {
		if r.Name == "" || seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		repos = append(repos, r)
	}

	return repos
}

// ContainsRepository reports whether repos holds an entry whose name equals
// name exactly (case-sensitive).
func ContainsRepository(repos []WatchedRepository, name string) bool {
	for _, r := range repos {
		if r.Name == name {
			return true
		}
	}
	return false
}

// ValidRepositoryName reports whether name has the "owner/repo" form where each
// part is non-empty and contains only alphanumerics, hyphens, dots or
// underscores.
func ValidRepositoryName(name string) bool {
	owner, repo, ok := strings.Cut(name, "/")
	if !ok {
		return false
	}

	for _, part := range []string{owner, repo} {
		if part == "" {
			return false
		}
		for _, ch := range part {
			if !isRepoNameChar(ch) {
				return false
			}
		}
	}

	return true
}

func isRepoNameChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '.' || ch == '_'
}
