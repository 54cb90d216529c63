package pastmediantimemanager

import (
	"sort"

	"github.com/cellnetwork/celld/domain/consensus/model"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// PastMedianTimeManager provides a method to resolve the
// past median time of a block
type PastMedianTimeManager struct {
	medianTimeBlockCount int
}

// New instantiates a new PastMedianTimeManager
func New(medianTimeBlockCount int) *PastMedianTimeManager {
	return &PastMedianTimeManager{medianTimeBlockCount: medianTimeBlockCount}
}

// PastMedianTime returns the median timestamp of header and up to
// medianTimeBlockCount-1 of its ancestors
func (pmtm *PastMedianTimeManager) PastMedianTime(headers model.HeaderProvider,
	header *externalapi.DomainBlockHeader) (uint64, error) {

	timestamps := make([]uint64, 0, pmtm.medianTimeBlockCount)
	current := header
	for {
		timestamps = append(timestamps, current.Timestamp)
		if len(timestamps) == pmtm.medianTimeBlockCount || current.Number == 0 {
			break
		}
		parent, err := headers.GetBlockHeader(&current.ParentHash)
		if err != nil {
			return 0, err
		}
		if parent.IsNone() {
			return 0, errors.Errorf("header %s of an ancestor of block %d is missing",
				current.ParentHash, header.Number)
		}
		current = parent.UnsafeFromSome()
	}
	return windowMedianTimestamp(timestamps), nil
}

func windowMedianTimestamp(timestamps []uint64) uint64 {
	sort.Slice(timestamps, func(i, j int) bool {
		return timestamps[i] < timestamps[j]
	})
	return timestamps[len(timestamps)/2]
}
