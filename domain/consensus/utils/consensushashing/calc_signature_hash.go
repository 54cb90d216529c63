package consensushashing

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/hashes"
	"github.com/cellnetwork/celld/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// SignatureSize is the size of a compact recoverable secp256k1 signature.
const SignatureSize = 65

// CalcSignatureHash returns the message a lock signs for a script group.
// groupIndexes are the input indexes whose cells share the lock, in order.
// The first witness of the group holds witness args whose lock field is the
// signature; it is committed to with that field zeroed. The other witnesses
// of the group and every witness past the inputs are committed to as is.
func CalcSignatureHash(tx *externalapi.DomainTransaction, groupIndexes []int) (*externalapi.DomainHash, error) {
	if len(groupIndexes) == 0 {
		return nil, errors.New("empty script group")
	}
	first := groupIndexes[0]
	if first >= len(tx.Witnesses) {
		return nil, errors.Errorf("missing witness for input %d", first)
	}
	args, err := serialization.WitnessArgsFromBytes(tx.Witnesses[first])
	if err != nil {
		return nil, errors.Wrapf(err, "witness of input %d", first)
	}
	if len(args.Lock) != SignatureSize {
		return nil, errors.Errorf("witness lock of input %d is %d bytes, expected %d",
			first, len(args.Lock), SignatureSize)
	}

	zeroed := *args
	zeroed.Lock = make([]byte, SignatureSize)

	writer := hashes.NewSighashWriter()
	writer.InfallibleWrite(TransactionHash(tx).ByteSlice())
	err = serialization.WriteVarBytes(writer, serialization.WitnessArgsToBytes(&zeroed))
	if err != nil {
		return nil, err
	}

	for _, index := range groupIndexes[1:] {
		if index >= len(tx.Witnesses) {
			continue
		}
		err = serialization.WriteVarBytes(writer, tx.Witnesses[index])
		if err != nil {
			return nil, err
		}
	}
	for i := len(tx.Inputs); i < len(tx.Witnesses); i++ {
		err = serialization.WriteVarBytes(writer, tx.Witnesses[i])
		if err != nil {
			return nil, err
		}
	}
	return writer.Finalize(), nil
}
