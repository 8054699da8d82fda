package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/pathakanu/chatmemo/internal/model"
)

// skipIfNoDocker skips the test if Docker is not available
func skipIfNoDocker(t *testing.T) {
	if os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true" {
		t.Skip("Skipping Docker-based tests in CI environment")
	}
}

func setupMongoTestContainer(t *testing.T) *MongoStore {
	skipIfNoDocker(t)

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Skipf("Failed to start MongoDB container (Docker may not be available): %v", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Skipf("Failed to get MongoDB connection string: %v", err)
	}

	store, err := NewMongoStore(ctx, uri, "chatmemo_test")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Skipf("Failed to create MongoDB storage: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(ctx)
		_ = container.Terminate(ctx)
	})
	return store
}

func TestMongoStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping MongoDB integration test in short mode")
	}

	store := setupMongoTestContainer(t)
	db := store.Client().Database("chatmemo_test")

	runStoreTests(t, store, func(u *model.User, g *model.Group) {
		ctx := context.Background()
		_, err := db.Collection("users").InsertOne(ctx, u)
		require.NoError(t, err)
		_, err = db.Collection("groups").InsertOne(ctx, g)
		require.NoError(t, err)
	})
}
