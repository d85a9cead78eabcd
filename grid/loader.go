package grid

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Map document glyphs
const (
	GlyphFree     = '.'
	GlyphObstacle = '#'
)

const mapSchemaURL = "mem://schemas/map.json"

//go:embed map.schema.json
var mapSchemaSource []byte

var mapSchema = mustCompileMapSchema()

func mustCompileMapSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(mapSchemaURL, bytes.NewReader(mapSchemaSource)); err != nil {
		panic(fmt.Sprintf("map schema: %v", err))
	}
	return compiler.MustCompile(mapSchemaURL)
}

// Document is the on-disk map form
//
//	name: fjord
//	rows:
//	  - "..#.."
//	  - "....."
type Document struct {
	Name string   `yaml:"name,omitempty"`
	Rows []string `yaml:"rows"`
}

// LoadLayout reads and validates a YAML map document
// The file base name is used when the document carries no name
func LoadLayout(path string) (*Layout, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l, err := ParseLayout(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if l.name == "" {
		l.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return l, nil
}

// ParseLayout validates raw YAML against the map schema and builds a Layout
func ParseLayout(raw []byte) (*Layout, error) {
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("map yaml: %w", err)
	}
	if err := mapSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("map schema: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("map yaml: %w", err)
	}

	return LayoutFromRows(doc.Name, doc.Rows)
}

// LayoutFromRows builds a layout from glyph rows without schema validation
// Used for maps received over the wire; any glyph other than '.' or '#' is an error
func LayoutFromRows(name string, rows []string) (*Layout, error) {
	blocked := make([][]bool, len(rows))
	for r, row := range rows {
		blocked[r] = make([]bool, len(row))
		for c := 0; c < len(row); c++ {
			switch row[c] {
			case GlyphFree:
			case GlyphObstacle:
				blocked[r][c] = true
			default:
				return nil, fmt.Errorf("layout %q: row %d col %d: unknown glyph %q", name, r, c, row[c])
			}
		}
	}
	return NewLayout(name, blocked)
}

// MarshalLayout renders l as a YAML map document
func MarshalLayout(l *Layout) ([]byte, error) {
	return yaml.Marshal(Document{Name: l.name, Rows: l.Rows()})
}
