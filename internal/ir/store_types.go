package ir

// NOTE: store-layer record, not part of the compiled spec IR.

// PointRecord is a validated point as persisted by the store.
type PointRecord struct {
	ID        string `json:"id"`         // Content-addressed (PointID)
	Space     string `json:"space"`      // Owning space name
	ShapeHash string `json:"shape_hash"` // ShapeHash of the space when recorded
	Data      Object `json:"data"`
	RunToken  string `json:"run_token"` // Groups points recorded by one command or scenario
	Seq       int64  `json:"seq"`       // Logical clock, assigned by the store
	IRVersion string `json:"ir_version"`
}
