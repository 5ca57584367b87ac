package rulefile

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/enunezf/dbsanitize/internal/core/domain"
)

// Output formats for generated documents
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Encode writes doc to w. YAML output keeps the entry order of doc.
func Encode(w io.Writer, doc *domain.GeneratedDocument, format string) error {
	switch format {
	case "", FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(documentNode(doc)); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc.Sanitize()); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil

	default:
		return domain.NewConfigurationError("unsupported format %q (expected yaml or json)", format)
	}
}

func documentNode(doc *domain.GeneratedDocument) *yaml.Node {
	group := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range doc.Entries {
		entry := &yaml.Node{
			Kind: yaml.MappingNode,
			Content: []*yaml.Node{
				str("description"), str(e.Description),
				str("query"), str(e.Query),
			},
		}
		group.Content = append(group.Content, str(e.Table), entry)
	}

	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			str("sanitize"),
			{Kind: yaml.MappingNode, Content: []*yaml.Node{str(doc.MachineName), group}},
		},
	}
}

func str(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
