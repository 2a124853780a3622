package mobility

import (
	"math"
	"math/rand/v2"

	"github.com/mnedge/emulator/internal/geo"
)

// headingStddev is the standard deviation (radians) of the zero-mean
// Gaussian rotation applied to a user's heading on every step.
const headingStddev = math.Pi / 16

// User tracks one mobile subscriber's position and motion. All mutation
// happens through Step, called only from MobilityCore.tick under the
// core's writer lock; User itself holds no lock.
type User struct {
	ID       uint32
	pos      geo.Point
	heading  float64 // radians
	velocity float64
	bounds   float64 // half-side of the square simulation area
}

// NewUser creates a User at pos with the given heading angle (radians),
// velocity, and simulation bounds.
func NewUser(id uint32, pos geo.Point, heading, velocity, bounds float64) *User {
	return &User{
		ID:       id,
		pos:      pos,
		heading:  geo.NormalizeAngle(heading),
		velocity: velocity,
		bounds:   bounds,
	}
}

// Position returns the user's current coordinates.
func (u *User) Position() geo.Point {
	return u.pos
}

// Step advances position by heading*velocity, then perturbs heading by a
// zero-mean Gaussian rotation (stddev pi/16), clamped/renormalized to
// [-pi,pi]. Coordinates wrap torus-style over [-bounds,+bounds] on both
// axes. rng may be nil to disable perturbation entirely (velocity 0 and
// rng nil reproduces a fully deterministic, literal walk for scripted
// test scenarios).
func (u *User) Step(rng *rand.Rand) {
	u.pos.X = geo.WrapTorus(u.pos.X+math.Cos(u.heading)*u.velocity, u.bounds)
	u.pos.Y = geo.WrapTorus(u.pos.Y+math.Sin(u.heading)*u.velocity, u.bounds)

	if rng == nil {
		return
	}
	perturb := rng.NormFloat64() * headingStddev
	u.heading = geo.NormalizeAngle(u.heading + perturb)
}
