package mongo_test

import (
	"context"
	"os"
	"testing"

	"github.com/xraph/skydesk/store"
	"github.com/xraph/skydesk/store/mongo"
	"github.com/xraph/skydesk/store/storetest"
)

// Set SKYDESK_TEST_MONGO_URI to run against a scratch deployment. Each
// test drops the skydesk_test database first.
func TestStore(t *testing.T) {
	uri := os.Getenv("SKYDESK_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SKYDESK_TEST_MONGO_URI not set")
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		s, err := mongo.Open(uri, "skydesk_test")
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if err := s.Database().Drop(ctx); err != nil {
			t.Fatalf("Drop: %v", err)
		}
		if err := s.Migrate(ctx); err != nil {
			t.Fatalf("Migrate: %v", err)
		}
		return s
	})
}
