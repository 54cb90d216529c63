package pow

import (
	"math/big"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
)

// CheckProofOfWorkWithTarget check's if the block has a valid PoW according to the provided target
// it does not check if the difficulty itself is valid or less than the maximum for the appropriate network
func CheckProofOfWorkWithTarget(header *externalapi.DomainBlockHeader, target *big.Int) bool {
	if target.Sign() <= 0 {
		return false
	}
	// The block pow hash must be less or equal than the claimed target.
	return calcPowValue(header).Cmp(target) <= 0
}

// CheckProofOfWorkByCompactTarget check's if the block has a valid PoW according to its compact target
// it does not check if the difficulty itself is valid or less than the maximum for the appropriate network
func CheckProofOfWorkByCompactTarget(header *externalapi.DomainBlockHeader) bool {
	return CheckProofOfWorkWithTarget(header, blockchain.CompactToBig(header.CompactTarget))
}

// calcPowValue interprets the pow hash as a big endian number.
func calcPowValue(header *externalapi.DomainBlockHeader) *big.Int {
	return new(big.Int).SetBytes(consensushashing.PoWHash(header).ByteSlice())
}
