package mongostore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"hostelfix/backend/internal/models"
	"hostelfix/backend/internal/storage"
	"hostelfix/backend/internal/storage/storetest"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// testStore connects to MONGO_TEST_URI and drops the database between runs.
func testStore(t *testing.T) storage.Store {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	s, err := NewStore(ctx, uri, "hostelfix_test")
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	if err := s.db.Drop(ctx); err != nil {
		t.Fatalf("Failed to drop test database: %v", err)
	}
	if err := s.ensureIndexes(ctx); err != nil {
		t.Fatalf("Failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		s.db.Drop(context.Background())
		s.Close()
	})

	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, testStore)
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, wrapError(nil))
	assert.ErrorIs(t, wrapError(mongo.ErrNoDocuments), storage.ErrNotFound)
	assert.ErrorIs(t, wrapError(fmt.Errorf("decode: %w", mongo.ErrNoDocuments)), storage.ErrNotFound)

	other := errors.New("socket closed")
	assert.Equal(t, other, wrapError(other))
}

func TestComplaintFilter(t *testing.T) {
	f := complaintFilter(storage.ComplaintFilter{HostelCode: "HST001", Status: models.StatusInProgress})
	assert.Equal(t, bson.D{
		{Key: "hostelCode", Value: "HST001"},
		{Key: "status", Value: models.StatusInProgress},
	}, f)
	assert.Empty(t, complaintFilter(storage.ComplaintFilter{}))
}
