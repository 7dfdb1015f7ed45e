package ir

// Version constants for the spec IR and the library.
const (
	// IRVersion is the compiled spec schema version.
	IRVersion = "1"

	// EngineVersion is the cadcad library version recorded with stored points.
	EngineVersion = "0.1.0"
)
