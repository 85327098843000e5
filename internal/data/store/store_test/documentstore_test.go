package store_test

import (
	"context"
	"testing"

	"github.com/akolanti/docmind/internal/config"
	"github.com/akolanti/docmind/internal/data/redisStore"
	"github.com/akolanti/docmind/internal/data/store"
	"github.com/akolanti/docmind/internal/domain/commonModels"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisDocumentStore_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	internalStore := redisStore.NewTestStore(client)
	docStore := store.TestDocumentStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	docID := "doc_abc_123"

	testDoc := commonModels.Document{
		Id:     docID,
		Name:   "handbook.pdf",
		ChatId: "chat-1",
		Status: commonModels.DocumentProcessing,
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		err := docStore.SaveDocument(ctx, testDoc)
		if err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}

		retrieved, found := docStore.GetDocument(ctx, docID)
		if !found {
			t.Fatal("Document was saved but not found in Redis")
		}

		if retrieved.Name != testDoc.Name || retrieved.Status != testDoc.Status {
			t.Errorf("Data mismatch! Got %+v, want %+v", retrieved, testDoc)
		}
	})

	t.Run("Status Update Overwrites", func(t *testing.T) {
		testDoc.Status = commonModels.DocumentCompleted
		testDoc.ChunkCount = 12
		testDoc.Vectorized = true
		if err := docStore.SaveDocument(ctx, testDoc); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}

		retrieved, found := docStore.GetDocument(ctx, docID)
		if !found {
			t.Fatal("Document disappeared after update")
		}
		if retrieved.Status != commonModels.DocumentCompleted || retrieved.ChunkCount != 12 || !retrieved.Vectorized {
			t.Errorf("Update not persisted: %+v", retrieved)
		}
	})

	t.Run("Get Non-Existent Document", func(t *testing.T) {
		_, found := docStore.GetDocument(ctx, "ghost-id")
		if found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Delete Document", func(t *testing.T) {
		docStore.DeleteDocument(ctx, docID)

		if mr.Exists(docID) {
			t.Error("Document still exists in Redis after DeleteDocument call")
		}
	})
}

func TestInMemoryDocumentStore_Lifecycle(t *testing.T) {
	docStore := store.InitInMemoryDocumentStore()
	ctx := context.Background()

	doc := commonModels.Document{Id: "mem-1", Status: commonModels.DocumentUploaded}
	if err := docStore.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	retrieved, found := docStore.GetDocument(ctx, "mem-1")
	if !found || retrieved.Status != commonModels.DocumentUploaded {
		t.Fatalf("GetDocument got %+v found=%v", retrieved, found)
	}

	docStore.DeleteDocument(ctx, "mem-1")
	if _, found := docStore.GetDocument(ctx, "mem-1"); found {
		t.Error("Document still present after delete")
	}
}

func TestRedisDocumentStore_Race(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	docStore := store.TestDocumentStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	doc := commonModels.Document{Id: "race-doc"}

	const workers = 50
	for i := 0; i < workers; i++ {
		go func() {
			_ = docStore.SaveDocument(ctx, doc)
			_, _ = docStore.GetDocument(ctx, "race-doc")
		}()
	}
}
