// Package rulefile reads and writes sanitize YML rule documents.
package rulefile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/enunezf/dbsanitize/internal/core/domain"
	"github.com/enunezf/dbsanitize/internal/core/ports"
)

// rawDocument mirrors the file layout. Entries stay as nodes because only the
// presence of a table key matters.
type rawDocument struct {
	Sanitize map[string]map[string]yaml.Node `yaml:"sanitize"`
}

// Loader implements ports.RuleLoader over the local filesystem
type Loader struct {
	discoverer ports.Discoverer
	logger     *zap.Logger
}

// NewLoader creates a loader. discoverer may be nil, in which case an
// explicit path is always required.
func NewLoader(discoverer ports.Discoverer, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{discoverer: discoverer, logger: logger}
}

// Load reads and parses a single rule document. A missing file is reported
// before any parse is attempted.
func (l *Loader) Load(path string) (*domain.RuleDocument, error) {
	if path == "" {
		return nil, domain.NewConfigurationError("no sanitize file path given")
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewConfigurationError("file %s does not exist", path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, domain.NewConfigurationError("%s is a directory, not a sanitize file", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := Parse(path, data)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("loaded sanitize file",
		zap.String("file", path),
		zap.Int("groups", len(doc.Groups)),
	)
	return doc, nil
}

// Parse decodes a rule document. source is used for error messages only.
func Parse(source string, data []byte) (*domain.RuleDocument, error) {
	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &domain.ParseError{Path: source, Err: err}
	}

	doc := &domain.RuleDocument{
		Source: source,
		Groups: make(map[string]map[string]domain.Rule, len(raw.Sanitize)),
	}
	for group, entries := range raw.Sanitize {
		rules := make(map[string]domain.Rule, len(entries))
		for table, node := range entries {
			var rule domain.Rule
			// Entries that are not description/query mappings still declare the table.
			_ = node.Decode(&rule)
			rules[table] = rule
		}
		doc.Groups[group] = rules
	}

	return doc, nil
}

// DeclaredTables returns the tables declared by the document at path. When
// path is empty every document found by the discoverer is loaded instead.
func (l *Loader) DeclaredTables(ctx context.Context, path string) (domain.TableSet, error) {
	paths := []string{path}
	if path == "" {
		if l.discoverer == nil {
			return nil, domain.NewConfigurationError("no sanitize file given and no search paths configured")
		}

		var err error
		paths, err = l.discoverer.Discover(ctx)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, domain.NewConfigurationError("no sanitize YML files found in the search paths")
		}
	}

	declared := domain.NewTableSet()
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := l.Load(p)
		if err != nil {
			return nil, err
		}
		declared.Add(doc.Tables()...)
	}

	return declared, nil
}
