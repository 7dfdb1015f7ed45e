package ir

// SpaceSpec represents a compiled space definition.
type SpaceSpec struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Dimensions  []DimensionSpec  `json:"dimensions"`
	Constraints []ConstraintSpec `json:"constraints,omitempty"`
	Metrics     []MetricSpec     `json:"metrics,omitempty"`
	Projections []ProjectionSpec `json:"projections,omitempty"`
	Operations  []string         `json:"operations,omitempty"`
}

// Dimension type names used in DimensionSpec.Type.
const (
	TypeBool   = "bool"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeString = "string"
	TypeList   = "list"
	TypeObject = "object" // inline nested mapping, see Fields
	TypeSpace  = "space"  // reference to another space, see Ref
)

// ValidDimensionTypes defines the allowed DimensionSpec.Type values.
var ValidDimensionTypes = map[string]bool{
	TypeBool:   true,
	TypeInt:    true,
	TypeFloat:  true,
	TypeString: true,
	TypeList:   true,
	TypeObject: true,
	TypeSpace:  true,
}

// DimensionSpec represents one named slot of a space.
type DimensionSpec struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Ref    string          `json:"ref,omitempty"`    // space name when Type == "space"
	Fields []DimensionSpec `json:"fields,omitempty"` // children when Type == "object"
}

// Constraint kinds.
const (
	ConstraintRange = "range"
)

// ConstraintSpec is a declarative constraint compiled into a Bit-valued block.
type ConstraintSpec struct {
	Name string   `json:"name"`
	Kind string   `json:"kind"`
	Path string   `json:"path"`
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
}

// Metric kinds.
const (
	MetricEuclidean = "euclidean"
)

// MetricSpec is a declarative metric compiled into a Real-valued block.
type MetricSpec struct {
	Name  string   `json:"name"`
	Kind  string   `json:"kind"`
	Paths []string `json:"paths,omitempty"` // empty means every numeric leaf
}

// ProjectionSpec maps target leaf paths to source leaf paths.
type ProjectionSpec struct {
	Name   string            `json:"name"`
	Target string            `json:"target"`
	Fields map[string]string `json:"fields"` // target path -> source path
}

// References returns the names of every space this spec's dimensions
// reference, in declaration order, without duplicates.
func (s *SpaceSpec) References() []string {
	var refs []string
	seen := make(map[string]bool)
	var walk func(dims []DimensionSpec)
	walk = func(dims []DimensionSpec) {
		for _, d := range dims {
			switch d.Type {
			case TypeSpace:
				if !seen[d.Ref] {
					seen[d.Ref] = true
					refs = append(refs, d.Ref)
				}
			case TypeObject:
				walk(d.Fields)
			}
		}
	}
	walk(s.Dimensions)
	return refs
}
