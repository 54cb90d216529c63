package verifycache

import (
	"testing"

	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/processes/transactionvalidator"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCache(t *testing.T) {
	cache := New(2)
	first := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	second := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})
	third := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{3})
	features := chainconfig.FeatureDisallowDepConsumption

	hitsBefore := testutil.ToFloat64(cacheHits)
	missesBefore := testutil.ToFloat64(cacheMisses)

	if _, ok := cache.Get(first, features); ok {
		t.Fatalf("TestCache: empty cache returned an entry")
	}

	cache.Put(first, features, &transactionvalidator.Completed{Cycles: 537, Fee: 10})
	entry, ok := cache.Get(first, features)
	if !ok {
		t.Fatalf("TestCache: entry not found")
	}
	completed, ok := entry.(*transactionvalidator.Completed)
	if !ok || completed.Cycles != 537 || completed.Fee != 10 {
		t.Fatalf("TestCache: unexpected entry %+v", entry)
	}

	if _, ok := cache.Get(first, features|chainconfig.FeatureData1HashType); ok {
		t.Fatalf("TestCache: entry returned under different features")
	}

	cache.Put(second, features, &transactionvalidator.Suspended{Fee: 3})
	cache.Put(third, features, &transactionvalidator.Completed{Cycles: 1})
	if cache.Len() != 2 {
		t.Fatalf("TestCache: expected 2 entries, got %d", cache.Len())
	}

	cache.Remove(third)
	if _, ok := cache.Get(third, features); ok {
		t.Fatalf("TestCache: removed entry still returned")
	}

	hits := testutil.ToFloat64(cacheHits) - hitsBefore
	misses := testutil.ToFloat64(cacheMisses) - missesBefore
	if hits != 1 || misses != 3 {
		t.Fatalf("TestCache: expected 1 hit and 3 misses, got %v and %v", hits, misses)
	}
}
