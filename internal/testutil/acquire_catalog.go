package testutil

import (
	"context"
	"os"

	"github.com/shopbox/shopbox/catalog"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireCatalog opens a writable catalog in a temporary directory and
// returns it along with its cleanup function.
func AcquireCatalog(ctx context.Context, t TestLog) (*catalog.Store, func()) {
	dir, err := os.MkdirTemp("", "shopbox-tests")
	if err != nil {
		t.Fatal(err)
	}
	store, err := catalog.Load(ctx, dir, true)
	if err != nil {
		t.Fatal(err)
	}
	return store, func() {
		err := store.Close()
		if err != nil {
			t.Log("unable to close catalog", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

// AcquireSeededCatalog is AcquireCatalog plus the Goodies seed data, so
// tests start from the same ten products the reference deployment has.
func AcquireSeededCatalog(ctx context.Context, t TestLog) (*catalog.Store, func()) {
	store, cleanup := AcquireCatalog(ctx, t)
	if err := store.SeedGoodies(ctx); err != nil {
		cleanup()
		t.Fatal(err)
	}
	return store, cleanup
}
