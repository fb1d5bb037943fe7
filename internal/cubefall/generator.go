package cubefall

import (
	"fmt"

	"github.com/Carmen-Shannon/cubefall/common"
	"github.com/Carmen-Shannon/cubefall/engine/mesh"
)

// Generate creates count cubes sharing the context's geometry and material, adds them to the
// scene and appends them to ctx.Cubes. A non-positive count generates DefaultCubeCount cubes.
//
// Cubes spawn at z = 0 with x and y uniform in a range of SpawnFraction times the window width
// and height, centred on the origin. The x and z rotations are drawn from [0, 360) and stored
// as radians unchanged. Scale is uniform on all three axes and drawn from [0, 1).
//
// Parameters:
//   - ctx: the application context
//   - count: the number of cubes to create
//
// Returns:
//   - []mesh.Mesh: the new cubes in creation order
//   - error: ErrNoContext, ErrNoScene, or a wrapped scene error; on error no cube is added
func Generate(ctx *Context, count int) ([]mesh.Mesh, error) {
	if ctx == nil {
		return nil, ErrNoContext
	}
	if ctx.Scene == nil {
		return nil, ErrNoScene
	}
	if count <= 0 {
		count = DefaultCubeCount
	}
	r := ctx.Random
	if r == nil {
		r = common.DefaultRandom
	}

	w, h := float32(ctx.Width), float32(ctx.Height)
	cubes := make([]mesh.Mesh, 0, count)
	for range count {
		x := (r() - 0.5) * w * SpawnFraction
		y := (r() - 0.5) * h * SpawnFraction
		scale := r()
		rx := r() * 360
		rz := r() * 360

		cubes = append(cubes, mesh.NewMesh(ctx.Geometry, ctx.Material,
			mesh.WithPosition(x, y, 0),
			mesh.WithRotation(rx, 0, rz),
			mesh.WithUniformScale(scale),
		))
	}

	if err := ctx.Scene.Add(cubes...); err != nil {
		return nil, fmt.Errorf("failed to add cubes to scene: %w", err)
	}
	ctx.Cubes = append(ctx.Cubes, cubes...)

	common.Logger().Debug("cubes generated", "count", count, "total", len(ctx.Cubes))
	return cubes, nil
}
