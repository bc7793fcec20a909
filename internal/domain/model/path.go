package model

import (
	"fmt"
	"net/url"
)

// RepositoryPathPrefix is the path under which a repository's browse view is
// addressed. The identifier follows as a single percent-encoded segment.
const RepositoryPathPrefix = "/repository/"

// EncodeRepositoryPath builds the browse view path for a repository name,
// e.g. "facebook/react" becomes "/repository/facebook%2Freact".
func EncodeRepositoryPath(name string) string {
	return RepositoryPathPrefix + url.PathEscape(name)
}

// DecodeRepositoryIdentifier percent-decodes a path-carried repository
// identifier.
func DecodeRepositoryIdentifier(raw string) (string, error) {
	name, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("decode repository identifier %q: %w", raw, err)
	}
	if name == "" {
		return "", fmt.Errorf("decode repository identifier %q: empty", raw)
	}
	return name, nil
}
