package txscript

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/consensus/utils/hashes"
	"github.com/cellnetwork/celld/domain/consensus/utils/serialization"
	"github.com/cellnetwork/celld/domain/consensus/utils/systemcells"
	"github.com/pkg/errors"
)

// Secp256k1Blake160Lock returns the lock script paying to publicKey.
func Secp256k1Blake160Lock(publicKey *btcec.PublicKey) *externalapi.Script {
	return &externalapi.Script{
		CodeHash: systemcells.Secp256k1Blake160SighashAllCodeHash,
		HashType: externalapi.ScriptHashTypeData,
		Args:     hashes.Blake160(publicKey.SerializeCompressed()),
	}
}

// SignSecp256k1Group signs the inputs at groupIndexes, which must all be
// locked by privateKey's Secp256k1Blake160Lock. The signature is stored in
// the lock field of the group's first witness, which is created if
// missing. Other witness args fields are preserved.
func SignSecp256k1Group(tx *externalapi.DomainTransaction, groupIndexes []int, privateKey *btcec.PrivateKey) error {
	if len(groupIndexes) == 0 {
		return errors.New("cannot sign an empty group")
	}
	first := groupIndexes[0]
	for len(tx.Witnesses) <= first {
		tx.Witnesses = append(tx.Witnesses, nil)
	}

	args := &externalapi.WitnessArgs{}
	if len(tx.Witnesses[first]) > 0 {
		var err error
		args, err = serialization.WitnessArgsFromBytes(tx.Witnesses[first])
		if err != nil {
			return errors.Wrapf(err, "witness of input %d", first)
		}
	}
	args.Lock = make([]byte, consensushashing.SignatureSize)
	tx.Witnesses[first] = serialization.WitnessArgsToBytes(args)

	message, err := consensushashing.CalcSignatureHash(tx, groupIndexes)
	if err != nil {
		return err
	}
	args.Lock = ecdsa.SignCompact(privateKey, message.ByteSlice(), true)
	tx.Witnesses[first] = serialization.WitnessArgsToBytes(args)
	return nil
}
