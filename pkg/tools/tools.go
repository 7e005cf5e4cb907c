package tools

import (
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Parameter types used in input contracts
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// ErrDuplicateTool is returned when two descriptors share a name
var ErrDuplicateTool = errors.New("duplicate tool name")

// Param describes one input parameter of a tool
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
	// Items is the element type of an array parameter
	Items string
}

// Descriptor is the static metadata of one tool, as listed to clients
type Descriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`

	params []Param
}

// NewDescriptor builds a descriptor whose input schema is an object with the given parameters
func NewDescriptor(name, description string, params ...Param) Descriptor {
	schema := &jsonschema.Schema{
		Type:       TypeObject,
		Properties: make(map[string]*jsonschema.Schema, len(params)),
	}

	for _, p := range params {
		prop := &jsonschema.Schema{
			Type:        p.Type,
			Description: p.Description,
		}
		if p.Items != "" {
			prop.Items = &jsonschema.Schema{Type: p.Items}
		}
		schema.Properties[p.Name] = prop
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}

	return Descriptor{
		Name:        name,
		Description: description,
		InputSchema: schema,
		params:      append([]Param(nil), params...),
	}
}

// Params returns the parameters in declaration order
func (d Descriptor) Params() []Param {
	return append([]Param(nil), d.params...)
}

// RequiredParams returns the names of required parameters in declaration order
func (d Descriptor) RequiredParams() []string {
	var names []string
	for _, p := range d.params {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// Catalog is the immutable, ordered set of tools served by the process
type Catalog struct {
	descriptors []Descriptor
	index       map[string]int
}

// NewCatalog creates a catalog, rejecting empty and duplicate names
func NewCatalog(descriptors ...Descriptor) (*Catalog, error) {
	c := &Catalog{
		descriptors: make([]Descriptor, 0, len(descriptors)),
		index:       make(map[string]int, len(descriptors)),
	}

	for _, d := range descriptors {
		if d.Name == "" {
			return nil, fmt.Errorf("tool name cannot be empty")
		}
		if _, exists := c.index[d.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, d.Name)
		}
		c.index[d.Name] = len(c.descriptors)
		c.descriptors = append(c.descriptors, d)
	}

	return c, nil
}

// Lookup gets a descriptor by name
func (c *Catalog) Lookup(name string) (Descriptor, bool) {
	i, ok := c.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return c.descriptors[i], true
}

// Descriptors returns all descriptors in catalog order
func (c *Catalog) Descriptors() []Descriptor {
	return append([]Descriptor(nil), c.descriptors...)
}

// Names returns the tool names in catalog order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.descriptors))
	for i, d := range c.descriptors {
		names[i] = d.Name
	}
	return names
}

// Len returns the number of tools
func (c *Catalog) Len() int {
	return len(c.descriptors)
}
