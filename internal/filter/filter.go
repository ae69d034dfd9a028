// Package filter decides which directories a recursive walk visits.
package filter

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	log "github.com/sirupsen/logrus"
)

// Filter reports whether relPath (relative to the walk root) should be visited.
type Filter func(relPath string, isDir bool) bool

// Build creates a Filter that:
// 1. Always excludes .git directories (hardcoded)
// 2. Excludes paths matching any of excludes (gitignore syntax)
// 3. Applies .gitignore files found under root when gitignoreEnabled is set
func Build(root string, gitignoreEnabled bool, excludes []string) Filter {
	var excluded *ignore.GitIgnore
	if len(excludes) > 0 {
		excluded = ignore.CompileIgnoreLines(excludes...)
	}

	var matcher *gitignoreMatcher
	if gitignoreEnabled {
		var err error
		matcher, err = newGitignoreMatcher(root)
		if err != nil {
			log.Warnf("[Filter] failed to build gitignore matcher: %v", err)
		}
	}

	return func(relPath string, isDir bool) bool {
		relPath = filepath.ToSlash(relPath)
		if relPath == "" || relPath == "." {
			return true
		}

		if relPath == ".git" || strings.HasSuffix(relPath, "/.git") {
			return false
		}

		checkPath := relPath
		if isDir {
			checkPath = relPath + "/"
		}
		if excluded != nil && excluded.MatchesPath(checkPath) {
			return false
		}

		if matcher != nil && matcher.isIgnored(relPath, isDir) {
			return false
		}

		return true
	}
}

// gitignoreMatcher collects .gitignore rules from a tree
type gitignoreMatcher struct {
	matchers []scopedMatcher
}

type scopedMatcher struct {
	dirPrefix string
	ignore    *ignore.GitIgnore
}

func newGitignoreMatcher(root string) (*gitignoreMatcher, error) {
	m := &gitignoreMatcher{}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if filepath.Base(path) == ".git" && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Base(path) != ".gitignore" {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}

		relDir, relErr := filepath.Rel(root, filepath.Dir(path))
		if relErr != nil {
			return nil
		}
		if relDir == "." {
			relDir = ""
		}

		m.matchers = append(m.matchers, scopedMatcher{
			dirPrefix: filepath.ToSlash(relDir),
			ignore:    ignore.CompileIgnoreLines(strings.Split(string(data), "\n")...),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *gitignoreMatcher) isIgnored(relPath string, isDir bool) bool {
	if m == nil || len(m.matchers) == 0 {
		return false
	}

	checkPath := relPath
	if isDir {
		checkPath = relPath + "/"
	}

	for _, sm := range m.matchers {
		pathToCheck := checkPath
		if sm.dirPrefix != "" {
			prefix := sm.dirPrefix + "/"
			if !strings.HasPrefix(relPath, prefix) {
				continue
			}
			pathToCheck = strings.TrimPrefix(checkPath, prefix)
		}

		if sm.ignore.MatchesPath(pathToCheck) {
			return true
		}
	}
	return false
}
