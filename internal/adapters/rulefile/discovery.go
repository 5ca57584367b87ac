package rulefile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/enunezf/dbsanitize/internal/core/domain"
)

// DefaultPattern matches the conventional rule file names
const DefaultPattern = "*.sanitize.yml"

var skippedDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
}

// GlobDiscoverer finds rule documents below a set of root directories
type GlobDiscoverer struct {
	roots   []string
	pattern string
	logger  *zap.Logger
}

// NewGlobDiscoverer creates a discoverer matching base names against pattern
func NewGlobDiscoverer(roots []string, pattern string, logger *zap.Logger) *GlobDiscoverer {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GlobDiscoverer{roots: roots, pattern: pattern, logger: logger}
}

// Discover walks every root and returns the matching files, sorted
func (d *GlobDiscoverer) Discover(ctx context.Context) ([]string, error) {
	if len(d.roots) == 0 {
		return nil, domain.NewConfigurationError("no sanitize file given and no search paths configured")
	}
	if _, err := filepath.Match(d.pattern, ""); err != nil {
		return nil, domain.NewConfigurationError("invalid sanitize file pattern %q: %v", d.pattern, err)
	}

	found := make(map[string]struct{})
	for _, root := range d.roots {
		if _, err := os.Stat(root); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, domain.NewConfigurationError("search path %s does not exist", root)
			}
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}

		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			name := entry.Name()
			if entry.IsDir() {
				if path != root && (skippedDirs[name] || strings.HasPrefix(name, ".")) {
					return filepath.SkipDir
				}
				return nil
			}

			if ok, _ := filepath.Match(d.pattern, name); ok {
				found[path] = struct{}{}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", root, err)
		}
	}

	paths := make([]string, 0, len(found))
	for p := range found {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	d.logger.Debug("discovered sanitize files",
		zap.Strings("roots", d.roots),
		zap.Int("count", len(paths)),
	)
	return paths, nil
}
