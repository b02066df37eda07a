package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// sourceExtensions lists the file extensions that make it into the initial
// commit. Everything else in the extracted bundle stays local.
var sourceExtensions = map[string]bool{
	".cs":     true,
	".csproj": true,
	".sln":    true,
	".yml":    true,
}

// IsSourceFile reports whether the given path carries one of the extensions
// included in the initial commit.
func IsSourceFile(path string) bool {
	return sourceExtensions[strings.ToLower(filepath.Ext(path))]
}

// RepositoryPath converts a local file path into its repository path: the
// path relative to the extraction root, slash-separated and rooted at "/".
func RepositoryPath(root, file string) (string, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q against %q: %w", file, root, err)
	}
	return "/" + filepath.ToSlash(rel), nil
}
