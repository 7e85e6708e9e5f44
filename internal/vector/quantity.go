package vector

import "fmt"

// Kind tags a Quantity with its physical meaning. Only the kinds declared in
// this package satisfy it.
type Kind interface {
	kindName() string
}

type (
	PositionKind     struct{}
	VelocityKind     struct{}
	ForceKind        struct{}
	AccelerationKind struct{}
	MomentumKind     struct{}
)

func (PositionKind) kindName() string     { return "position" }
func (VelocityKind) kindName() string     { return "velocity" }
func (ForceKind) kindName() string        { return "force" }
func (AccelerationKind) kindName() string { return "acceleration" }
func (MomentumKind) kindName() string     { return "momentum" }

// Quantity is a Vec3 carrying a physical kind. Quantities of different kinds
// are different types.
type Quantity[K Kind] struct {
	Vec3
}

type (
	Position     = Quantity[PositionKind]
	Velocity     = Quantity[VelocityKind]
	Force        = Quantity[ForceKind]
	Acceleration = Quantity[AccelerationKind]
	Momentum     = Quantity[MomentumKind]
)

// From tags a raw vector with kind K.
func From[K Kind](v Vec3) Quantity[K] {
	return Quantity[K]{Vec3: v}
}

// Retag converts a quantity to another kind. The conversion is never implicit.
func Retag[To, Src Kind](q Quantity[Src]) Quantity[To] {
	return Quantity[To]{Vec3: q.Vec3}
}

func NewPosition(x, y, z float64) Position         { return From[PositionKind](New(x, y, z)) }
func NewVelocity(x, y, z float64) Velocity         { return From[VelocityKind](New(x, y, z)) }
func NewForce(x, y, z float64) Force               { return From[ForceKind](New(x, y, z)) }
func NewAcceleration(x, y, z float64) Acceleration { return From[AccelerationKind](New(x, y, z)) }
func NewMomentum(x, y, z float64) Momentum         { return From[MomentumKind](New(x, y, z)) }

func (q Quantity[K]) Add(o Quantity[K]) Quantity[K] {
	return Quantity[K]{Vec3: q.Vec3.Add(o.Vec3)}
}

func (q Quantity[K]) Sub(o Quantity[K]) Quantity[K] {
	return Quantity[K]{Vec3: q.Vec3.Sub(o.Vec3)}
}

func (q Quantity[K]) Scale(s float64) Quantity[K] {
	return Quantity[K]{Vec3: q.Vec3.Scale(s)}
}

func (q Quantity[K]) Normalize() (Quantity[K], error) {
	v, err := q.Vec3.Normalize()
	if err != nil {
		return Quantity[K]{}, fmt.Errorf("%s: %w", q.Kind(), err)
	}
	return Quantity[K]{Vec3: v}, nil
}

// Kind returns the name of the physical quantity.
func (q Quantity[K]) Kind() string {
	var k K
	return k.kindName()
}

func (q Quantity[K]) String() string {
	return q.Kind() + q.Vec3.String()
}

// Scale is scalar·quantity, the same as q.Scale(s).
func Scale[K Kind](s float64, q Quantity[K]) Quantity[K] {
	return q.Scale(s)
}

// Sum adds up quantities of one kind.
func Sum[K Kind](qs ...Quantity[K]) Quantity[K] {
	var total Quantity[K]
	for _, q := range qs {
		total = total.Add(q)
	}
	return total
}

// Accel returns F/m.
func Accel(f Force, mass float64) Acceleration {
	return From[AccelerationKind](f.Vec3.Scale(1 / mass))
}

// MomentumOf returns m·v.
func MomentumOf(v Velocity, mass float64) Momentum {
	return From[MomentumKind](v.Vec3.Scale(mass))
}

// VelocityOf returns p/m.
func VelocityOf(p Momentum, mass float64) Velocity {
	return From[VelocityKind](p.Vec3.Scale(1 / mass))
}

// Displacement returns v·dt.
func Displacement(v Velocity, dt float64) Position {
	return From[PositionKind](v.Vec3.Scale(dt))
}

// VelocityChange returns a·dt.
func VelocityChange(a Acceleration, dt float64) Velocity {
	return From[VelocityKind](a.Vec3.Scale(dt))
}
