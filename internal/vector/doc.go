// Package vector provides the 3D vector algebra used by the dynamics code.
//
// [Vec3] is a plain value type. On top of it the package defines five
// physical quantities that share the same arithmetic but are distinct
// types, so a force cannot be added to a position by accident:
//
//   - [Position]     (Å)
//   - [Velocity]     (Å/fs)
//   - [Force]        (g·Å/(mol·fs²))
//   - [Acceleration] (Å/fs²)
//   - [Momentum]     (g·Å/(mol·fs))
//
// Mixing kinds is only possible through the embedded [Vec3] and the result
// must be tagged again explicitly:
//
//	disp := vector.Displacement(v, dt)         // Velocity -> Position
//	p = p.Add(disp)
//	raw := p.Vec3.Add(f.Vec3)                  // untyped
//	p2 := vector.From[vector.PositionKind](raw) // explicit re-tag
package vector
