package scene

import "log/slog"

// Stats counts what happened to objects and triangles in one frame.
type Stats struct {
	ObjectsDrawn  int
	ObjectsCulled int // outside the frustum as a whole

	Triangles int // faces considered
	BackFaces int // culled as back-facing
	Rejected  int // outside a lateral plane
	Clipped   int // removed entirely by the near or far plane
	Emitted   int // triangles handed to the rasterizer after clipping
	Pixels    int // pixels that passed the depth test
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("objects", s.ObjectsDrawn),
		slog.Int("culled", s.ObjectsCulled),
		slog.Int("triangles", s.Triangles),
		slog.Int("backfaces", s.BackFaces),
		slog.Int("rejected", s.Rejected),
		slog.Int("clipped", s.Clipped),
		slog.Int("emitted", s.Emitted),
		slog.Int("pixels", s.Pixels),
	)
}
