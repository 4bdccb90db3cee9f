package semantic

import (
	"context"
	"errors"
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"

	"github.com/WessleyAI/wessley-fitment/engine/domain"
)

// --- Mocks ---

type mockPoints struct {
	searchResp *pb.SearchResponse
	searchErr  error
	lastReq    *pb.SearchPoints
}

func (m *mockPoints) Search(_ context.Context, req *pb.SearchPoints, _ ...grpc.CallOption) (*pb.SearchResponse, error) {
	m.lastReq = req
	return m.searchResp, m.searchErr
}

type mockCollections struct {
	getResp *pb.GetCollectionInfoResponse
	getErr  error
}

func (m *mockCollections) Get(_ context.Context, _ *pb.GetCollectionInfoRequest, _ ...grpc.CallOption) (*pb.GetCollectionInfoResponse, error) {
	return m.getResp, m.getErr
}

func strVal(s string) *pb.Value { return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}} }
func intVal(n int64) *pb.Value  { return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: n}} }

// --- Tests ---

func TestNewWithClients(t *testing.T) {
	vs := NewWithClients(&mockPoints{}, &mockCollections{}, "test")
	if vs == nil {
		t.Fatal("expected non-nil")
	}
	if err := vs.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNew_RequiresAddr(t *testing.T) {
	_, err := New(Options{})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestQuery(t *testing.T) {
	pts := &mockPoints{searchResp: &pb.SearchResponse{Result: []*pb.ScoredPoint{
		{
			Id:    &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: "p-1"}},
			Score: 0.91,
			Payload: map[string]*pb.Value{
				"type":         strVal("vehicle_to_battery"),
				"make":         strVal("Honda"),
				"model":        strVal("CBR600RR"),
				"year":         intVal(2020),
				"chrome_model": strVal("YTZ10S"),
				"chrome_sku":   strVal("CB-YTZ10S"),
				"yuasa_model":  strVal("YTZ10S"),
			},
		},
		{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: 42}},
			Score:   0.5,
			Payload: map[string]*pb.Value{"make": strVal("Yamaha")},
		},
	}}}
	vs := NewWithClients(pts, &mockCollections{}, "chrome_fitments")

	hits, err := vs.Query(context.Background(), []float32{0.1, 0.2}, domain.VehicleToBattery, 25)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	want := domain.FitmentRecord{
		ID: "p-1", Direction: domain.VehicleToBattery, Make: "Honda", Model: "CBR600RR", Year: "2020",
		BatteryModel: "YTZ10S", BatterySKU: "CB-YTZ10S", AltModel: "YTZ10S",
	}
	if hits[0].Record != want || hits[0].Score != 0.91 {
		t.Errorf("hit[0] = %+v", hits[0])
	}
	if hits[1].Record.ID != "42" || hits[1].Record.Direction != domain.VehicleToBattery {
		t.Errorf("hit[1] = %+v", hits[1].Record)
	}

	req := pts.lastReq
	if req.GetCollectionName() != "chrome_fitments" || req.GetLimit() != 25 {
		t.Errorf("request = %v", req)
	}
	f := req.GetFilter().GetMust()[0].GetField()
	if f.GetKey() != "type" || f.GetMatch().GetKeyword() != "vehicle_to_battery" {
		t.Errorf("filter = %v", f)
	}
}

func TestQuery_Error(t *testing.T) {
	vs := NewWithClients(&mockPoints{searchErr: errors.New("unavailable")}, &mockCollections{}, "c")
	if _, err := vs.Query(context.Background(), []float32{1}, domain.BatteryToVehicle, 5); err == nil {
		t.Fatal("expected error")
	}
}

func TestQuery_ZeroLimit(t *testing.T) {
	pts := &mockPoints{}
	vs := NewWithClients(pts, &mockCollections{}, "c")
	hits, err := vs.Query(context.Background(), []float32{1}, domain.BatteryToVehicle, 0)
	if err != nil || hits != nil || pts.lastReq != nil {
		t.Fatalf("expected no call, got %v %v", hits, err)
	}
}

func TestStats(t *testing.T) {
	count := uint64(1200)
	cols := &mockCollections{getResp: &pb.GetCollectionInfoResponse{Result: &pb.CollectionInfo{
		PointsCount: &count,
		Config: &pb.CollectionConfig{Params: &pb.CollectionParams{
			VectorsConfig: &pb.VectorsConfig{Config: &pb.VectorsConfig_Params{Params: &pb.VectorParams{Size: 1536}}},
		}},
	}}}
	vs := NewWithClients(&mockPoints{}, cols, "chrome_fitments")
	st, err := vs.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := domain.CatalogStats{Backend: "qdrant", Collection: "chrome_fitments", Points: 1200, VectorSize: 1536}
	if st != want {
		t.Errorf("Stats = %+v, want %+v", st, want)
	}

	vs = NewWithClients(&mockPoints{}, &mockCollections{getErr: errors.New("not found")}, "missing")
	if _, err := vs.Stats(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
