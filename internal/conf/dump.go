package conf

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tphakala/swordgate/internal/logger"
)

const redacted = "[REDACTED]"

// Dump writes the effective settings as YAML with secret values masked.
func Dump(w io.Writer, settings *Settings) error {
	var doc yaml.Node
	if err := doc.Encode(settings); err != nil {
		return err
	}
	redactNode(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}

// redactNode masks every non-empty scalar whose mapping key looks sensitive.
func redactNode(n *yaml.Node) {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			if value.Kind == yaml.ScalarNode && value.Value != "" && logger.IsSensitiveKey(key.Value) {
				value.Value = redacted
				value.Tag = "!!str"
				value.Style = 0
				continue
			}
			redactNode(value)
		}
		return
	}
	for _, child := range n.Content {
		redactNode(child)
	}
}
