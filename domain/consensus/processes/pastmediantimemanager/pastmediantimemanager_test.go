package pastmediantimemanager

import (
	"testing"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/lightningnetwork/lnd/fn/v2"
)

type headers map[externalapi.DomainHash]*externalapi.DomainBlockHeader

func (h headers) GetBlockHeader(blockHash *externalapi.DomainHash) (fn.Option[*externalapi.DomainBlockHeader], error) {
	header := h[*blockHash]
	if header == nil {
		return fn.None[*externalapi.DomainBlockHeader](), nil
	}
	return fn.Some(header), nil
}

func TestPastMedianTime(t *testing.T) {
	const genesisTime = 1_000_000
	chain := make(headers)
	blockHeaders := make([]*externalapi.DomainBlockHeader, 100)
	for i := range blockHeaders {
		header := &externalapi.DomainBlockHeader{Number: uint64(i), Timestamp: genesisTime + uint64(i)*1000}
		if i > 0 {
			header.ParentHash = *consensushashing.HeaderHash(blockHeaders[i-1])
		}
		// Out of order timestamps must not affect the median.
		if i == 50 {
			header.Timestamp = genesisTime
		}
		blockHeaders[i] = header
		chain[*consensushashing.HeaderHash(header)] = header
	}

	tests := []struct {
		blockNumber                      int
		expectedMillisecondsSinceGenesis uint64
	}{
		{blockNumber: 0, expectedMillisecondsSinceGenesis: 0},
		{blockNumber: 4, expectedMillisecondsSinceGenesis: 2000},
		{blockNumber: 36, expectedMillisecondsSinceGenesis: 18000},
		{blockNumber: 99, expectedMillisecondsSinceGenesis: 81000},
		{blockNumber: 60, expectedMillisecondsSinceGenesis: 41000},
	}

	manager := New(37)
	for _, test := range tests {
		pastMedianTime, err := manager.PastMedianTime(chain, blockHeaders[test.blockNumber])
		if err != nil {
			t.Fatalf("PastMedianTime: %s", err)
		}
		if pastMedianTime-genesisTime != test.expectedMillisecondsSinceGenesis {
			t.Errorf("TestPastMedianTime: expected past median time of block %d to be %d milliseconds "+
				"from genesis but got %d",
				test.blockNumber, test.expectedMillisecondsSinceGenesis, pastMedianTime-genesisTime)
		}
	}

	orphan := &externalapi.DomainBlockHeader{Number: 5, ParentHash: externalapi.DomainHash{}}
	_, err := manager.PastMedianTime(chain, orphan)
	if err == nil {
		t.Fatalf("TestPastMedianTime: expected an error for a header with an unknown parent")
	}
}
