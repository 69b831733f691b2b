package vector

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"
)

// Qdrant talks to a Qdrant server (or Qdrant Cloud) over gRPC.
type Qdrant struct {
	client     *qdrant.Client
	collection string
}

func NewQdrant(rawURL, apiKey, collection string) (*Qdrant, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("QDRANT_URL must be set")
	}

	host, port, useTLS, err := parseQdrantURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid QDRANT_URL: %w", err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant: %w", err)
	}

	return &Qdrant{client: client, collection: collection}, nil
}

func (q *Qdrant) Name() string { return "Qdrant" }

func (q *Qdrant) EnsureCollection(ctx context.Context, dim int) (bool, error) {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return false, fmt.Errorf("check collection: %w", err)
	}
	if exists {
		return false, nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return false, fmt.Errorf("create collection: %w", err)
	}
	return true, nil
}

func (q *Qdrant) Upsert(ctx context.Context, points []Point) error {
	qps := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		qps[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: toQdrantPayload(p.Payload),
		}
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         qps,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	return nil
}

func (q *Qdrant) Search(ctx context.Context, vector []float32, limit int) ([]Hit, error) {
	results, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{
			Score:   r.GetScore(),
			Payload: fromQdrantPayload(r.GetPayload()),
		}
	}
	return hits, nil
}

func (q *Qdrant) Count(ctx context.Context) (int, error) {
	n, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return int(n), nil
}

func (q *Qdrant) Drop(ctx context.Context) error {
	if err := q.client.DeleteCollection(ctx, q.collection); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

func (q *Qdrant) Close() error { return q.client.Close() }

func toQdrantPayload(payload map[string]string) map[string]*qdrant.Value {
	out := make(map[string]*qdrant.Value, len(payload))
	for k, v := range payload {
		out[k] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
	}
	return out
}

func fromQdrantPayload(payload map[string]*qdrant.Value) map[string]string {
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		if s := v.GetStringValue(); s != "" {
			out[k] = s
		}
	}
	return out
}

// parseQdrantURL splits a Qdrant endpoint like "https://xyz.cloud.qdrant.io"
// or "localhost:6334" into gRPC connection parameters. The gRPC port 6334 is
// assumed when the URL names none.
func parseQdrantURL(raw string) (host string, port int, useTLS bool, err error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, false, err
	}
	if u.Hostname() == "" {
		return "", 0, false, fmt.Errorf("no host in %q", raw)
	}

	port = 6334
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, false, fmt.Errorf("bad port in %q", raw)
		}
	}
	return u.Hostname(), port, u.Scheme == "https", nil
}

var _ Store = (*Qdrant)(nil)
