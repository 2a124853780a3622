package mobility

import (
	"math"
	"math/rand/v2"
	"net/netip"
	"time"

	"github.com/mnedge/emulator/internal/geo"
)

// BootstrapConfig describes the synthetic layout used to construct a Core
// at process start. Callers may supply exact positions — e.g. parsed from
// a YAML seed file — via UserPositions/CellPositions, or leave them empty
// and let NewBootstrap scatter NumUsers/NumCells uniformly at random
// within Bounds.
type BootstrapConfig struct {
	NumUsers     int
	NumCells     int
	Bounds       float64
	UserVelocity float64
	CellRadius   float64

	UserPositions []geo.Point // overrides NumUsers scatter when non-empty
	CellPositions []geo.Point // overrides NumCells scatter when non-empty

	IPPoolAddrs []netip.Addr

	Now func() time.Time
	RNG *rand.Rand
}

// NewBootstrap builds a ready-to-run Core from cfg.
func NewBootstrap(cfg BootstrapConfig) *Core {
	rng := cfg.RNG
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}

	users := bootstrapUsers(cfg, rng)
	cells := bootstrapCells(cfg, rng)

	return New(Config{
		Users:  users,
		Cells:  cells,
		IPPool: NewIPPool(cfg.IPPoolAddrs),
		Now:    cfg.Now,
		RNG:    rng,
	})
}

func bootstrapUsers(cfg BootstrapConfig, rng *rand.Rand) []*User {
	positions := cfg.UserPositions
	if len(positions) == 0 {
		positions = scatterUniform(cfg.NumUsers, cfg.Bounds, rng)
	}
	users := make([]*User, 0, len(positions))
	for i, pos := range positions {
		heading := rng.Float64()*2*math.Pi - math.Pi
		users = append(users, NewUser(uint32(i+1), pos, heading, cfg.UserVelocity, cfg.Bounds))
	}
	return users
}

func bootstrapCells(cfg BootstrapConfig, rng *rand.Rand) []*RadioCell {
	positions := cfg.CellPositions
	if len(positions) == 0 {
		positions = scatterUniform(cfg.NumCells, cfg.Bounds, rng)
	}
	cells := make([]*RadioCell, 0, len(positions))
	for i, pos := range positions {
		cells = append(cells, NewRadioCell(uint32(i+1), pos, cfg.CellRadius))
	}
	return cells
}

// scatterUniform returns n points drawn uniformly at random from
// [-bounds,+bounds]^2. A true Poisson-disk scatter would spread an initial
// layout more evenly, but the extra complexity isn't worth it here: the
// resulting layout is opaque input data, not a behaviour under test.
func scatterUniform(n int, bounds float64, rng *rand.Rand) []geo.Point {
	if n <= 0 {
		return nil
	}
	points := make([]geo.Point, n)
	for i := range points {
		points[i] = geo.Point{
			X: (rng.Float64()*2 - 1) * bounds,
			Y: (rng.Float64()*2 - 1) * bounds,
		}
	}
	return points
}
