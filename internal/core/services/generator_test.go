package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enunezf/dbsanitize/internal/core/domain"
)

func TestGeneratorBuild(t *testing.T) {
	g := NewGenerator("drush db-sanitize-generate")

	doc, err := g.Build([]string{"users_log", "cache_foo"}, "core")
	require.NoError(t, err)
	require.NotNil(t, doc)

	expected := map[string]map[string]map[string]domain.Rule{
		"sanitize": {
			"core": {
				"users_log": {
					Description: "Sanitization entry for users_log. Generated by drush db-sanitize-generate.",
					Query:       "TRUNCATE TABLE users_log",
				},
				"cache_foo": {
					Description: "Sanitization entry for cache_foo. Generated by drush db-sanitize-generate.",
					Query:       "TRUNCATE TABLE cache_foo",
				},
			},
		},
	}
	assert.Equal(t, expected, doc.Sanitize())
	assert.Equal(t, "users_log", doc.Entries[0].Table)
	assert.Equal(t, "cache_foo", doc.Entries[1].Table)
}

func TestGeneratorBuild_DefaultTool(t *testing.T) {
	doc, err := NewGenerator("").Build([]string{"t"}, "m")
	require.NoError(t, err)

	assert.Equal(t, "Sanitization entry for t. Generated by dbsanitize generate.", doc.Entries[0].Description)
}

func TestGeneratorBuild_NothingMissing(t *testing.T) {
	doc, err := NewGenerator("").Build(nil, "core")

	assert.NoError(t, err)
	assert.Nil(t, doc)
}

func TestGeneratorBuild_EmptyMachineName(t *testing.T) {
	doc, err := NewGenerator("").Build([]string{"a"}, "")

	assert.Nil(t, doc)
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestGeneratorBuild_EmptyMachineNameWithNothingMissing(t *testing.T) {
	_, err := NewGenerator("").Build(nil, "")

	assert.True(t, domain.IsConfigurationError(err))
}
