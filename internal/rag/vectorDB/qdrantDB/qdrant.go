package qdrantDB

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/akolanti/docmind/internal/config"
	"github.com/akolanti/docmind/internal/domain/commonModels"
	"github.com/akolanti/docmind/internal/domain/ragerrors"
	"github.com/akolanti/docmind/internal/rag/embedding"
	"github.com/akolanti/docmind/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// payload keys written for every point; everything else a chunk carries
// goes under the metadata key so the fixed schema stays queryable.
const (
	payloadText       = "text"
	payloadDocumentId = "document_id"
	payloadChatId     = "chat_id"
	payloadStartPos   = "start_position"
	payloadEndPos     = "end_position"
	payloadLength     = "length"
	payloadChunkIndex = "chunk_index"
	payloadMetadata   = "metadata"
)

type DB struct {
	client     *qdrant.Client
	embedder   embedding.Embedder
	collection string
	dimension  uint64
	failOpen   bool
	logger     *logger_i.Logger
}

// NewQdrantClient dials Qdrant over gRPC. Host and port come from the
// environment when set, config defaults otherwise.
func NewQdrantClient() (*qdrant.Client, error) {
	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, ragerrors.Wrap(ragerrors.KindConnection, "could not connect to qdrant", err)
	}
	return client, nil
}

func New(client *qdrant.Client, embedder embedding.Embedder) *DB {
	return &DB{
		client:     client,
		embedder:   embedder,
		collection: config.EmbeddingDBName,
		dimension:  config.EmbeddingOutputDimensionality,
		failOpen:   config.ScopeFilterFailOpen,
		logger:     logger_i.NewLogger("Qdrant"),
	}
}

// EnsureSchema creates the collection and its keyword indexes if missing.
// A collection whose vector size no longer matches the configured embedding
// dimension is dropped and recreated; its points cannot be searched anyway.
func (db *DB) EnsureSchema(ctx context.Context) error {
	exists, err := db.client.CollectionExists(ctx, db.collection)
	if err != nil {
		return classify(err, "could not check collection")
	}

	if exists {
		info, err := db.client.GetCollectionInfo(ctx, db.collection)
		if err != nil {
			return classify(err, "could not inspect collection")
		}
		size := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
		if size == db.dimension {
			return db.ensureIndexes(ctx)
		}

		db.logger.Warn("Vector size mismatch, recreating collection",
			"collection", db.collection, "have", size, "want", db.dimension)
		if err := db.client.DeleteCollection(ctx, db.collection); err != nil {
			return classify(err, "could not drop stale collection")
		}
	}

	err = db.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: db.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     db.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return classify(err, "could not create collection")
	}
	db.logger.Info("Created collection", "collection", db.collection, "dimension", db.dimension)

	return db.ensureIndexes(ctx)
}

// ensureIndexes keeps the scope filter fields indexed so filtered queries
// do not degrade into full scans. Re-creating an existing index is a no-op
// for qdrant, so this is safe on every startup.
func (db *DB) ensureIndexes(ctx context.Context) error {
	for _, field := range []string{payloadChatId, payloadDocumentId} {
		_, err := db.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: db.collection,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return classify(err, fmt.Sprintf("could not index %s", field))
		}
	}
	return nil
}

// UpsertBatch embeds the chunk texts and writes the points in one call.
// Returns the number of points written.
func (db *DB) UpsertBatch(ctx context.Context, chunks []commonModels.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := db.embedder.BatchEmbedding(ctx, texts, true)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(chunks) {
		return 0, ragerrors.New(ragerrors.KindVectorStore,
			fmt.Sprintf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors)))
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.Id),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadText:       chunk.Text,
				payloadDocumentId: chunk.DocumentId,
				payloadChatId:     chunk.ChatId,
				payloadStartPos:   chunk.StartPosition,
				payloadEndPos:     chunk.EndPosition,
				payloadLength:     chunk.Length,
				payloadChunkIndex: chunk.ChunkIndex,
				payloadMetadata:   chunk.Metadata,
			}),
		}
	}

	_, err = db.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, classify(err, "upsert failed")
	}

	db.logger.Debug("Upserted points", "collection", db.collection, "count", len(points))
	return len(points), nil
}

// Search embeds the query and runs a similarity query scoped to chatId.
// An empty chatId searches the whole collection. When the scope filter
// cannot be applied (missing payload index) the configured fallback decides:
// fail open retries once unfiltered, fail closed surfaces the error.
func (db *DB) Search(ctx context.Context, query string, chatId string, limit uint64, scoreThreshold float32) ([]commonModels.SearchResult, error) {
	loggr := db.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	vector, err := db.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	request := &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(limit),
		ScoreThreshold: qdrant.PtrOf(scoreThreshold),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if chatId != "" {
		request.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(payloadChatId, chatId)},
		}
	}

	hits, err := db.client.Query(ctx, request)
	if err != nil && request.Filter != nil && isMissingIndex(err) {
		if !db.failOpen {
			return nil, ragerrors.Wrap(ragerrors.KindVectorStore, "chat scope filter unavailable", err)
		}
		loggr.Warn("Chat scope filter unavailable, retrying unfiltered", "chatId", chatId, "error", err)
		request.Filter = nil
		hits, err = db.client.Query(ctx, request)
	}
	if err != nil {
		return nil, classify(err, "search failed")
	}

	results := make([]commonModels.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, commonModels.SearchResult{
			Id:         hit.GetId().GetUuid(),
			Score:      hit.GetScore(),
			Text:       hit.GetPayload()[payloadText].GetStringValue(),
			DocumentId: hit.GetPayload()[payloadDocumentId].GetStringValue(),
			ChatId:     hit.GetPayload()[payloadChatId].GetStringValue(),
			Metadata:   structToMap(hit.GetPayload()[payloadMetadata].GetStructValue()),
		})
	}

	loggr.Debug("Search done", "hits", len(results), "chatId", chatId)
	return results, nil
}

func (db *DB) DeleteByDocument(ctx context.Context, documentId string) error {
	return db.deleteByField(ctx, payloadDocumentId, documentId)
}

func (db *DB) DeleteByChat(ctx context.Context, chatId string) error {
	return db.deleteByField(ctx, payloadChatId, chatId)
}

// deleteByField removes every point matching the keyword filter. Deleting
// an id that was never indexed is not an error.
func (db *DB) deleteByField(ctx context.Context, field, value string) error {
	if value == "" {
		return ragerrors.New(ragerrors.KindValidation, fmt.Sprintf("empty %s", field))
	}

	_, err := db.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(field, value)},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return classify(err, "delete failed")
	}
	db.logger.Info("Deleted points", "field", field, "value", value)
	return nil
}

// Stats reports collection health without ever failing; callers use it for
// health checks where an error is itself the signal.
func (db *DB) Stats(ctx context.Context) commonModels.VectorStoreStats {
	stats := commonModels.VectorStoreStats{
		CollectionName: db.collection,
		VectorSize:     db.dimension,
	}

	info, err := db.client.GetCollectionInfo(ctx, db.collection)
	if err != nil {
		stats.Status = "unavailable"
		stats.Error = err.Error()
		return stats
	}

	stats.Status = strings.ToLower(strings.TrimPrefix(info.GetStatus().String(), "CollectionStatus"))
	stats.PointsCount = info.GetPointsCount()
	stats.SegmentsCount = info.GetSegmentsCount()
	return stats
}

func (db *DB) Close() error {
	db.logger.Info("Shutting down Qdrant")
	return db.client.Close()
}

// isMissingIndex spots the qdrant refusal to filter on an unindexed field.
func isMissingIndex(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	return st.Code() == codes.InvalidArgument && strings.Contains(st.Message(), "Index required")
}

func classify(err error, msg string) error {
	kind := ragerrors.KindVectorStore
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable:
			kind = ragerrors.KindConnection
		case codes.DeadlineExceeded:
			kind = ragerrors.KindTimeout
		case codes.ResourceExhausted:
			kind = ragerrors.KindRateLimit
		}
	}
	return ragerrors.Wrap(kind, msg, err)
}

func structToMap(s *qdrant.Struct) map[string]any {
	if s == nil || len(s.GetFields()) == 0 {
		return nil
	}
	out := make(map[string]any, len(s.GetFields()))
	for key, value := range s.GetFields() {
		out[key] = valueToAny(value)
	}
	return out
}

func valueToAny(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		items := kind.ListValue.GetValues()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = valueToAny(item)
		}
		return out
	case *qdrant.Value_StructValue:
		return structToMap(kind.StructValue)
	default:
		return nil
	}
}
