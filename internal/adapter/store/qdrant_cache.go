package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"neuropilot/internal/domain/entity"
)

// cacheTTL bounds how stale a cached verdict may be. Customer mood drifts;
// a day-old profile is the most we will reuse.
const cacheTTL = 24 * time.Hour

// QdrantCache is the semantic cache of classifier verdicts, keyed by
// message embedding with a cosine score threshold.
type QdrantCache struct {
	client     *qdrant.Client
	collection string
	log        *zap.Logger
}

func NewQdrantCache(client *qdrant.Client, collection string, log *zap.Logger) *QdrantCache {
	return &QdrantCache{client: client, collection: collection, log: log}
}

// InitCollection creates the collection and the created_at index on first
// run; both are no-ops afterwards.
func (c *QdrantCache) InitCollection(ctx context.Context, dim uint64) error {
	_, err := c.client.GetCollectionInfo(ctx, c.collection)
	if err != nil {
		st, ok := status.FromError(err)
		if !ok || st.Code() != codes.NotFound {
			return err
		}
		if err := c.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: c.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     dim,
				Distance: qdrant.Distance_Cosine,
			}),
		}); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
	}

	// Range filters on created_at drive the freshness cut-off.
	_, err = c.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: c.collection,
		FieldName:      "created_at",
		FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		c.log.Warn("could not create created_at index, may already exist", zap.Error(err))
	}
	return nil
}

func (c *QdrantCache) Lookup(ctx context.Context, vector []float32, threshold float32) (*entity.PsychProfileResult, error) {
	cutoff := time.Now().Add(-cacheTTL).Unix()
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key:   "created_at",
					Range: &qdrant.Range{Gte: qdrant.PtrOf(float64(cutoff))},
				},
			},
		}},
	}

	res, err := c.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
		ScoreThreshold: &threshold,
	})
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, nil
	}

	raw := res[0].Payload["result"].GetStringValue()
	var result entity.PsychProfileResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("corrupt cached result: %w", err)
	}
	return &result, nil
}

func (c *QdrantCache) Save(ctx context.Context, message string, res *entity.PsychProfileResult, vector []float32) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}

	_, err = c.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.collection,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDUUID(uuid.NewString()),
			Vectors: qdrant.NewVectors(vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"message":    message,
				"result":     string(raw),
				"created_at": time.Now().Unix(),
			}),
		}},
	})
	return err
}
