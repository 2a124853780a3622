package mobility

import (
	"testing"

	"github.com/mnedge/emulator/internal/geo"
)

func TestNewBootstrapScatterCounts(t *testing.T) {
	core := NewBootstrap(BootstrapConfig{
		NumUsers:     10,
		NumCells:     3,
		Bounds:       500,
		UserVelocity: 1,
		CellRadius:   50,
		IPPoolAddrs:  nil,
	})
	if len(core.Users()) != 10 {
		t.Fatalf("expected 10 users, got %d", len(core.Users()))
	}
	if len(core.Cells()) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(core.Cells()))
	}
	for _, u := range core.Users() {
		pos := u.Position()
		if pos.X < -500 || pos.X > 500 || pos.Y < -500 || pos.Y > 500 {
			t.Fatalf("user %d out of bounds: %+v", u.ID, pos)
		}
	}
}

func TestNewBootstrapUsesExplicitPositions(t *testing.T) {
	core := NewBootstrap(BootstrapConfig{
		UserPositions: []geo.Point{{X: 1, Y: 2}},
		CellPositions: []geo.Point{{X: 3, Y: 4}},
		Bounds:        500,
		CellRadius:    10,
	})
	users := core.Users()
	if len(users) != 1 || users[0].Position().X != 1 || users[0].Position().Y != 2 {
		t.Fatalf("expected explicit user position, got %+v", users)
	}
	cells := core.Cells()
	if len(cells) != 1 || cells[0].Centre.X != 3 || cells[0].Centre.Y != 4 {
		t.Fatalf("expected explicit cell position, got %+v", cells)
	}
}

func TestGenerateAddrsSkipsNetworkAddress(t *testing.T) {
	addrs, err := GenerateAddrs("10.0.0.0/30", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(addrs) != 2 {
		t.Fatalf("expected 2 addrs, got %d", len(addrs))
	}
	if addrs[0].String() != "10.0.0.1" || addrs[1].String() != "10.0.0.2" {
		t.Fatalf("unexpected addrs: %+v", addrs)
	}

	if _, err := GenerateAddrs("10.0.0.0/30", 10); err == nil {
		t.Fatal("expected error when requesting more addresses than available")
	}
}
