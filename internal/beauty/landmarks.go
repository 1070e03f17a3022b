package beauty

import (
	"encoding/json"
	"fmt"
	"math"
)

// Face mesh indices of the five scoring landmarks.
const (
	MeshLeftEye    = 33
	MeshRightEye   = 263
	MeshNoseTip    = 1
	MeshMouthLeft  = 61
	MeshMouthRight = 291
)

// MeshIndices lists the face mesh indices in scoring order.
var MeshIndices = []int{MeshLeftEye, MeshRightEye, MeshNoseTip, MeshMouthLeft, MeshMouthRight}

// Point is a normalized (x,y) landmark coordinate. It serializes as a [x, y] pair.
type Point struct {
	X float64
	Y float64
}

// Distance returns the euclidean distance between two points.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes a [x, y] pair. Extra coordinates (z) are ignored.
func (p *Point) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("landmark must be a coordinate array: %w", err)
	}
	if len(coords) < 2 {
		return fmt.Errorf("landmark needs at least 2 coordinates, got %d", len(coords))
	}
	p.X, p.Y = coords[0], coords[1]
	return nil
}

// FromMesh picks the five scoring landmarks out of a full face mesh.
// Returns ErrNoFace when the mesh is too short to contain them.
func FromMesh(mesh []Point) ([]Point, error) {
	out := make([]Point, 0, len(MeshIndices))
	for _, idx := range MeshIndices {
		if idx >= len(mesh) {
			return nil, ErrNoFace
		}
		out = append(out, mesh[idx])
	}
	return out, nil
}
