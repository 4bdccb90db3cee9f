// Package semantic implements the engine's vector index over the fitment
// catalog. Qdrant (gRPC) is the primary backend; Postgres with pgvector is
// the alternate.
package semantic

import (
	"context"
	"crypto/tls"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/WessleyAI/wessley-fitment/engine/domain"
)

// DefaultCollection is the Qdrant collection holding both catalog directions.
const DefaultCollection = "chrome_fitments"

// directionKey is the payload field that discriminates catalog directions.
const directionKey = "type"

type pointsAPI interface {
	Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error)
}

type collectionsAPI interface {
	Get(ctx context.Context, in *pb.GetCollectionInfoRequest, opts ...grpc.CallOption) (*pb.GetCollectionInfoResponse, error)
}

// Options configures the Qdrant connection.
type Options struct {
	Addr       string
	Collection string
	APIKey     string
	TLS        bool
}

// VectorStore is the read-only Qdrant view of the fitment catalog.
type VectorStore struct {
	conn        *grpc.ClientConn
	points      pointsAPI
	collections collectionsAPI
	collection  string
}

// New creates a VectorStore connected to Qdrant's gRPC port.
func New(opts Options) (*VectorStore, error) {
	if opts.Addr == "" {
		return nil, domain.NewConfigError("QDRANT_URL", "required")
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}

	creds := insecure.NewCredentials()
	if opts.TLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	dial := []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	if opts.APIKey != "" {
		dial = append(dial, grpc.WithUnaryInterceptor(apiKeyInterceptor(opts.APIKey)))
	}

	conn, err := grpc.NewClient(opts.Addr, dial...)
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", opts.Addr, err)
	}
	return &VectorStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  opts.Collection,
	}, nil
}

// NewWithClients wires a VectorStore around existing clients. Used in tests.
func NewWithClients(points pointsAPI, collections collectionsAPI, collection string) *VectorStore {
	return &VectorStore{points: points, collections: collections, collection: collection}
}

func apiKeyInterceptor(key string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		return invoker(metadata.AppendToOutgoingContext(ctx, "api-key", key), method, req, reply, cc, opts...)
	}
}

// Close closes the underlying gRPC connection.
func (v *VectorStore) Close() error {
	if v.conn == nil {
		return nil
	}
	return v.conn.Close()
}

// Query returns the nearest catalog records of one direction, best first.
func (v *VectorStore) Query(ctx context.Context, vector []float32, dir domain.Direction, limit int) ([]domain.Hit, error) {
	if limit <= 0 {
		return nil, nil
	}
	resp, err := v.points.Search(ctx, &pb.SearchPoints{
		CollectionName: v.collection,
		Vector:         vector,
		Limit:          uint64(limit),
		Filter:         &pb.Filter{Must: []*pb.Condition{fieldMatch(directionKey, dir.String())}},
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("semantic: search %s: %w", v.collection, err)
	}

	hits := make([]domain.Hit, 0, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		rec := decodeRecord(pointID(p.GetId()), p.GetPayload())
		if rec.Direction == 0 {
			rec.Direction = dir
		}
		hits = append(hits, domain.Hit{Record: rec, Score: p.GetScore()})
	}
	return hits, nil
}

// Stats reports the collection's point count and vector size.
func (v *VectorStore) Stats(ctx context.Context) (domain.CatalogStats, error) {
	resp, err := v.collections.Get(ctx, &pb.GetCollectionInfoRequest{CollectionName: v.collection})
	if err != nil {
		return domain.CatalogStats{}, fmt.Errorf("semantic: collection info %s: %w", v.collection, err)
	}
	info := resp.GetResult()
	return domain.CatalogStats{
		Backend:    "qdrant",
		Collection: v.collection,
		Points:     info.GetPointsCount(),
		VectorSize: info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize(),
	}, nil
}

func fieldMatch(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}

func pointID(id *pb.PointId) string {
	if u := id.GetUuid(); u != "" {
		return u
	}
	if id == nil {
		return ""
	}
	return fmt.Sprint(id.GetNum())
}
