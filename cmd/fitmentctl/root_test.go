package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/wessley-fitment/engine/domain"
	"github.com/WessleyAI/wessley-fitment/pkg/natsutil"
)

type fakeEngine struct {
	queries []string
	models  []string
}

func (f *fakeEngine) FindBatteryForVehicle(_ context.Context, q string) domain.RankedMatches {
	f.queries = append(f.queries, q)
	m := domain.CandidateMatch{
		FitmentRecord: domain.FitmentRecord{Make: "Arctic Cat", Model: "DVX50", Year: "2006", BatteryModel: "YTX4L-BS", BatterySKU: "YUAM62T4L"},
		CombinedScore: 0.88,
		Source:        domain.SourceSemantic,
	}
	return domain.RankedMatches{Query: q, Direction: domain.VehicleToBattery, Matches: []domain.CandidateMatch{m}, Primary: &m, Total: 1}
}

func (f *fakeEngine) FindVehiclesForBattery(_ context.Context, model string) domain.RankedMatches {
	f.models = append(f.models, model)
	return domain.RankedMatches{Query: model, Direction: domain.BatteryToVehicle, Matches: []domain.CandidateMatch{}}
}

func (f *fakeEngine) Stats(context.Context) (domain.CatalogStats, error) {
	return domain.CatalogStats{Backend: "qdrant", Collection: "chrome_fitments", Points: 42}, nil
}

func execute(t *testing.T, eng *fakeEngine, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(func(context.Context, *cli) (client, error) {
		return &localClient{engine: eng}, nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBatteryCommand(t *testing.T) {
	eng := &fakeEngine{}
	out, err := execute(t, eng, "battery", "Arctic", "Cat", "DVX50", "2006")
	if err != nil {
		t.Fatalf("battery: %v", err)
	}
	if len(eng.queries) != 1 || eng.queries[0] != "Arctic Cat DVX50 2006" {
		t.Errorf("queries = %v", eng.queries)
	}
	if !strings.Contains(out, "YTX4L-BS") || !strings.Contains(out, "**Recommended:**") {
		t.Errorf("output = %q", out)
	}
}

func TestBatteryCommand_JSON(t *testing.T) {
	out, err := execute(t, &fakeEngine{}, "--json", "battery", "dvx50")
	if err != nil {
		t.Fatal(err)
	}
	var res domain.RankedMatches
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if res.Primary == nil || res.Primary.BatteryModel != "YTX4L-BS" {
		t.Errorf("result = %+v", res)
	}
}

func TestVehiclesCommand(t *testing.T) {
	eng := &fakeEngine{}
	out, err := execute(t, eng, "vehicles", "YTX14-BS")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No compatible vehicles found for battery YTX14-BS") {
		t.Errorf("output = %q", out)
	}

	if _, err := execute(t, eng, "vehicles", "YTZ7S;--"); !errors.Is(err, domain.ErrInvalidBatteryModel) {
		t.Errorf("invalid model error = %v", err)
	}
	if len(eng.models) != 1 {
		t.Errorf("models = %v", eng.models)
	}
}

func TestStatsCommand(t *testing.T) {
	out, err := execute(t, &fakeEngine{}, "stats")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "points:      42") {
		t.Errorf("output = %q", out)
	}
}

func TestArgsValidation(t *testing.T) {
	if _, err := execute(t, &fakeEngine{}, "battery"); err == nil {
		t.Error("battery without args should fail")
	}
	if _, err := execute(t, &fakeEngine{}, "vehicles", "a", "b"); err == nil {
		t.Error("vehicles with two args should fail")
	}
}

func TestConnectError(t *testing.T) {
	cmd := newRootCmd(func(context.Context, *cli) (client, error) {
		return nil, errors.New("qdrant unreachable")
	})
	cmd.SetArgs([]string{"stats"})
	cmd.SetOut(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "qdrant unreachable") {
		t.Fatalf("err = %v", err)
	}
}

func TestNATSClient(t *testing.T) {
	srv, err := natsserver.NewServer(&natsserver.Options{Port: -1})
	if err != nil {
		t.Fatal(err)
	}
	srv.Start()
	defer srv.Shutdown()
	if !srv.ReadyForConnections(3 * time.Second) {
		t.Fatal("nats not ready")
	}
	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatal(err)
	}
	defer nc.Close()

	sub, err := natsutil.Respond(nc, domain.SubjectStats, "", nil, func(context.Context, struct{}) (domain.CatalogStats, error) {
		return domain.CatalogStats{Backend: "pgvector", Points: 3}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()

	cmd := newRootCmd(nil)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--nats", srv.ClientURL(), "--timeout", "5s", "stats"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("stats over nats: %v", err)
	}
	if !strings.Contains(out.String(), "pgvector") {
		t.Errorf("output = %q", out.String())
	}
}
