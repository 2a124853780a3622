package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/mnedge/emulator/internal/api"
	"github.com/mnedge/emulator/internal/edge"
	"github.com/mnedge/emulator/internal/eventbus"
	"github.com/mnedge/emulator/internal/exposure"
	"github.com/mnedge/emulator/internal/geo"
	"github.com/mnedge/emulator/internal/metrics"
	"github.com/mnedge/emulator/internal/mobility"
	"github.com/mnedge/emulator/internal/model"
	"github.com/mnedge/emulator/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cell := mobility.NewRadioCell(0, geo.Point{X: 0, Y: 0}, 10)
	user := mobility.NewUser(7, geo.Point{X: 1, Y: 1}, 0, 0, 1000)
	pool := mobility.NewIPPool([]netip.Addr{netip.MustParseAddr("10.0.0.1")})
	core := mobility.New(mobility.Config{Users: []*mobility.User{user}, Cells: []*mobility.RadioCell{cell}, IPPool: pool})

	dc := edge.NewDataCenter(1, "edc-1", geo.Point{X: 0, Y: 0})
	network := edge.NewNetwork([]*edge.DataCenter{dc})
	log := eventbus.NewMemoryLog()
	bus := exposure.New(http.DefaultClient)

	svc := service.NewEmulatorService(core, network, log, bus)
	srv := api.NewServer(api.Config{Port: 0, APIMaxBodyBytes: 1 << 20, Service: svc, Metrics: metrics.NewManager()})
	return httptest.NewServer(srv.Handler())
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestEdgeDataCentersAndApplicationLifecycle(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/network/edge_data_centers")
	if err != nil {
		t.Fatal(err)
	}
	var edcs []model.EDC
	if err := json.NewDecoder(resp.Body).Decode(&edcs); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(edcs) != 1 || edcs[0].ID != 1 {
		t.Fatalf("expected 1 edc with id 1, got %+v", edcs)
	}

	addResp, err := http.Post(ts.URL+"/network/edge_data_centers/1/applications/3", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	addResp.Body.Close()
	if addResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 adding application, got %d", addResp.StatusCode)
	}

	dupResp, err := http.Post(ts.URL+"/network/edge_data_centers/1/applications/3", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	dupResp.Body.Close()
	if dupResp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate application, got %d", dupResp.StatusCode)
	}

	missingResp, err := http.Get(ts.URL + "/network/edge_data_centers/99/applications")
	if err != nil {
		t.Fatal(err)
	}
	missingResp.Body.Close()
	if missingResp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing edc, got %d", missingResp.StatusCode)
	}
}

func TestUpdateUserPositionsRunsTick(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/mobile_network/update_user_positions", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	eventsResp, err := http.Get(ts.URL + "/mobile_network_exposure/events")
	if err != nil {
		t.Fatal(err)
	}
	var events []model.Event
	if err := json.NewDecoder(eventsResp.Body).Decode(&events); err != nil {
		t.Fatal(err)
	}
	eventsResp.Body.Close()
	if len(events) == 0 {
		t.Fatalf("expected events after update_user_positions")
	}
}
