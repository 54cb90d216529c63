package chain

import (
	"bytes"

	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/consensus/utils/dao"
	"github.com/cellnetwork/celld/domain/consensus/utils/serialization"
	"github.com/cellnetwork/celld/domain/consensus/utils/systemcells"
	"github.com/pkg/errors"
)

// depGroupTransactionIndex is the genesis transaction holding the dep
// groups of the system locks.
const depGroupTransactionIndex = 1

// GenesisBlock builds the genesis block of params. The cellbase deploys
// the system cells followed by the initial issuance; the second
// transaction holds a dep group for the secp256k1 lock.
func GenesisBlock(params *chainconfig.Params) (*externalapi.DomainBlock, error) {
	cellbase := &externalapi.DomainTransaction{
		Version:   params.TxVersion,
		Inputs:    []*externalapi.CellInput{{Since: 0, PreviousOutput: externalapi.NullOutPoint()}},
		Witnesses: [][]byte{params.GenesisMessage},
	}
	for _, systemCell := range systemcells.All() {
		err := appendOccupiedOutput(cellbase, &externalapi.Script{}, nil, systemCell.Data)
		if err != nil {
			return nil, err
		}
	}
	for _, issuance := range params.GenesisIssuance {
		cellbase.Outputs = append(cellbase.Outputs, &externalapi.CellOutput{Capacity: issuance.Capacity, Lock: issuance.Lock})
		cellbase.OutputsData = append(cellbase.OutputsData, nil)
	}

	cellbaseHash := consensushashing.TransactionHash(cellbase)
	var depGroupData bytes.Buffer
	err := serialization.SerializeOutPoints(&depGroupData, []externalapi.OutPoint{
		systemCellOutPoint(cellbaseHash, systemcells.ProgramSecp256k1Blake160SighashAll),
	})
	if err != nil {
		return nil, err
	}
	depGroups := &externalapi.DomainTransaction{
		Version:   params.TxVersion,
		Inputs:    []*externalapi.CellInput{{Since: 0, PreviousOutput: externalapi.NullOutPoint()}},
		Witnesses: [][]byte{nil},
	}
	err = appendOccupiedOutput(depGroups, &externalapi.Script{}, nil, depGroupData.Bytes())
	if err != nil {
		return nil, err
	}

	transactions := []*externalapi.DomainTransaction{cellbase, depGroups}
	daoField, err := dao.GenesisDAOField(transactions)
	if err != nil {
		return nil, err
	}

	block := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Version:          params.BlockVersion,
			CompactTarget:    params.GenesisCompactTarget,
			Timestamp:        params.GenesisTimestamp,
			Number:           0,
			Epoch:            params.EpochAt(0),
			TransactionsRoot: *consensushashing.TransactionsRoot(transactions),
			ProposalsHash:    *consensushashing.ProposalsHash(nil),
			ExtraHash:        *consensushashing.ExtraHash(nil, nil),
			DAO:              daoField,
		},
		Transactions: transactions,
	}
	return block, nil
}

func appendOccupiedOutput(tx *externalapi.DomainTransaction, lock, typeScript *externalapi.Script, data []byte) error {
	output := &externalapi.CellOutput{Lock: lock, Type: typeScript}
	capacity, err := output.OccupiedCapacity(uint64(len(data)))
	if err != nil {
		return errors.Wrap(err, "genesis system cell capacity")
	}
	output.Capacity = capacity
	tx.Outputs = append(tx.Outputs, output)
	tx.OutputsData = append(tx.OutputsData, data)
	return nil
}

func systemCellOutPoint(cellbaseHash *externalapi.DomainHash, program systemcells.Program) externalapi.OutPoint {
	for i, systemCell := range systemcells.All() {
		if systemCell.Program == program {
			return externalapi.OutPoint{TxHash: *cellbaseHash, Index: uint32(i)}
		}
	}
	panic(errors.Errorf("%s is not a system cell", program))
}

// SystemCellDep returns a code cell dep on a program deployed by genesis.
func SystemCellDep(genesis *externalapi.DomainBlock, program systemcells.Program) *externalapi.CellDep {
	return &externalapi.CellDep{
		OutPoint: systemCellOutPoint(consensushashing.TransactionHash(genesis.Cellbase()), program),
		DepType:  externalapi.DepTypeCode,
	}
}

// Secp256k1DepGroup returns the dep group cell dep of the secp256k1 lock.
func Secp256k1DepGroup(genesis *externalapi.DomainBlock) *externalapi.CellDep {
	return &externalapi.CellDep{
		OutPoint: externalapi.OutPoint{
			TxHash: *consensushashing.TransactionHash(genesis.Transactions[depGroupTransactionIndex]),
			Index:  0,
		},
		DepType: externalapi.DepTypeDepGroup,
	}
}
