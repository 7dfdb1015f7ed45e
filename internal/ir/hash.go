package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm migration.
const (
	DomainPoint = "cadcad/point/v1"
	DomainShape = "cadcad/shape/v1"
	DomainSpec  = "cadcad/spec/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PointID computes the content-addressed ID of a point: the owning space's
// name plus its data. Two points with equal data in the same space share an ID.
func PointID(space string, data Object) (string, error) {
	if data == nil {
		data = Object{}
	}
	canonical, err := MarshalCanonical(Object{
		"space": String(space),
		"data":  data,
	})
	if err != nil {
		return "", fmt.Errorf("PointID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPoint, canonical), nil
}

// ShapeHash hashes a shape rendered as an object of kind names, so a stored
// point can detect when its space's dimensions changed.
func ShapeHash(shape Object) (string, error) {
	canonical, err := MarshalCanonical(shape)
	if err != nil {
		return "", fmt.Errorf("ShapeHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainShape, canonical), nil
}

// SpecHash hashes the canonical JSON form of a compiled spec.
func SpecHash(canonical []byte) string {
	return hashWithDomain(DomainSpec, canonical)
}

// MustPointID is like PointID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustPointID(space string, data Object) string {
	id, err := PointID(space, data)
	if err != nil {
		panic(err)
	}
	return id
}
