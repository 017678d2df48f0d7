package manifest

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/fbz-tec/pgxdump/internal/logger"
	"gopkg.in/yaml.v3"
)

// Manifest is the YAML sidecar written next to a finished export. It
// records what was run and exactly what came out, so a file set can be
// audited without re-running the query.
type Manifest struct {
	ExportName  string      `yaml:"export_name"`
	Kind        string      `yaml:"kind"` // windowed or custom
	Query       string      `yaml:"query"`
	Window      string      `yaml:"window,omitempty"`
	Format      string      `yaml:"format"`
	Columns     []string    `yaml:"columns"`
	TotalRows   int64       `yaml:"total_rows"`
	Files       *FileCounts `yaml:"files"`
	ElapsedMs   int64       `yaml:"elapsed_ms"`
	GeneratedAt time.Time   `yaml:"generated_at"`
}

// FileCounts maps output file path to its data-row count, preserving file
// creation order in the marshalled YAML.
type FileCounts struct {
	m *orderedmap.OrderedMap[string, int64]
}

func NewFileCounts() *FileCounts {
	return &FileCounts{m: orderedmap.NewOrderedMap[string, int64]()}
}

func (fc *FileCounts) Add(path string, rows int64) {
	fc.m.Set(path, rows)
}

func (fc *FileCounts) Len() int {
	if fc == nil || fc.m == nil {
		return 0
	}
	return fc.m.Len()
}

// MarshalYAML emits a mapping node directly so key order follows insertion
// order instead of Go map iteration order.
func (fc *FileCounts) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	if fc == nil || fc.m == nil {
		return node, nil
	}
	for path, rows := range fc.m.AllFromFront() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: path},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(rows, 10)},
		)
	}
	return node, nil
}

// Path returns the manifest file path for an export base path (without
// extension).
func Path(basePath string) string {
	return basePath + ".manifest.yaml"
}

// Write marshals the manifest and writes it next to the export files.
func Write(path string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("error marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing manifest: %w", err)
	}
	logger.Debug("Manifest written: %s", path)
	return nil
}
