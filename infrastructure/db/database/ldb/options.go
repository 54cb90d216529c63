package ldb

import (
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// Chain store reads are point lookups of headers, blocks and cells, so
// tables carry a bloom filter and compaction is never seek triggered.
const bloomFilterBitsPerKey = 10

// Options returns the leveldb options the chain database is opened with.
// It's defined as a variable for the sake of testing.
var Options = func() *opt.Options {
	return &opt.Options{
		Compression:            opt.NoCompression,
		BlockCacheCapacity:     256 * opt.MiB,
		WriteBuffer:            128 * opt.MiB,
		DisableSeeksCompaction: true,
		Filter:                 filter.NewBloomFilter(bloomFilterBitsPerKey),
	}
}
