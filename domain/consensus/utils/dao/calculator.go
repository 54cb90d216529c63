package dao

import (
	"encoding/binary"

	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/model"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/ruleerrors"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/cellnetwork/celld/domain/consensus/utils/serialization"
	"github.com/cellnetwork/celld/domain/consensus/utils/systemcells"
	"github.com/pkg/errors"
)

// depositDataSize is the size of the data of deposit and withdrawing cells.
const depositDataSize = 8

// Calculator computes fees and DAO fields against a header provider.
type Calculator struct {
	params         *chainconfig.Params
	headerProvider model.HeaderProvider
}

// NewCalculator returns a Calculator.
func NewCalculator(params *chainconfig.Params, headerProvider model.HeaderProvider) *Calculator {
	return &Calculator{params: params, headerProvider: headerProvider}
}

// IsDAOTypeScript returns whether script is the DAO type script.
func IsDAOTypeScript(script *externalapi.Script) bool {
	return script != nil && script.HashType == externalapi.ScriptHashTypeData &&
		script.CodeHash.Equal(&systemcells.DAOCodeHash)
}

// TransactionFee returns the maximum withdraw of rtx's inputs minus its
// outputs. Outputs exceeding the inputs fail with ErrOverflow.
func (c *Calculator) TransactionFee(rtx *cell.ResolvedTransaction) (externalapi.Capacity, error) {
	maximumWithdraw, err := c.MaximumWithdraw(rtx)
	if err != nil {
		return 0, err
	}
	outputsCapacity, err := rtx.Transaction.OutputsCapacity()
	if err != nil {
		return 0, errors.Wrap(ErrOverflow, err.Error())
	}
	fee, err := maximumWithdraw.SafeSub(outputsCapacity)
	if err != nil {
		return 0, errors.Wrapf(ErrOverflow, "outputs capacity %s exceeds the maximum withdraw %s",
			outputsCapacity, maximumWithdraw)
	}
	return fee, nil
}

// MaximumWithdraw sums what rtx's inputs may pay out: the capacity of
// ordinary cells and the capacity plus interest of DAO withdrawing cells.
func (c *Calculator) MaximumWithdraw(rtx *cell.ResolvedTransaction) (externalapi.Capacity, error) {
	var total externalapi.Capacity
	for i, input := range rtx.ResolvedInputs {
		capacity := input.Output.Capacity
		if isWithdrawingCell(input) {
			var err error
			capacity, err = c.withdrawingCellMaximumWithdraw(rtx, i, input)
			if err != nil {
				return 0, err
			}
		}
		var err error
		total, err = total.SafeAdd(capacity)
		if err != nil {
			return 0, errors.Wrap(ErrOverflow, err.Error())
		}
	}
	return total, nil
}

func isWithdrawingCell(meta *externalapi.CellMeta) bool {
	return IsDAOTypeScript(meta.Output.Type) && len(meta.Data) == depositDataSize &&
		binary.LittleEndian.Uint64(meta.Data) != 0
}

// withdrawingCellMaximumWithdraw locates the deposit header through the
// header dep index carried in the input type field of the witness.
func (c *Calculator) withdrawingCellMaximumWithdraw(rtx *cell.ResolvedTransaction, inputIndex int,
	input *externalapi.CellMeta) (externalapi.Capacity, error) {

	if input.TransactionInfo == nil {
		return 0, errors.Wrapf(ruleerrors.ErrInvalidDAOWithdraw,
			"withdrawing cell %s is not committed", input.OutPoint)
	}
	tx := rtx.Transaction
	if inputIndex >= len(tx.Witnesses) {
		return 0, errors.Wrapf(ruleerrors.ErrInvalidDAOWithdraw, "missing witness for input %d", inputIndex)
	}
	args, err := serialization.WitnessArgsFromBytes(tx.Witnesses[inputIndex])
	if err != nil || len(args.InputType) != 8 {
		return 0, errors.Wrapf(ruleerrors.ErrInvalidDAOWithdraw,
			"witness of input %d doesn't carry a deposit header index", inputIndex)
	}
	headerDepIndex := binary.LittleEndian.Uint64(args.InputType)
	if headerDepIndex >= uint64(len(tx.HeaderDeps)) {
		return 0, errors.Wrapf(ruleerrors.ErrInvalidDAOWithdraw,
			"deposit header index %d out of range", headerDepIndex)
	}

	depositHeader, err := c.header(&tx.HeaderDeps[headerDepIndex])
	if err != nil {
		return 0, err
	}
	depositBlockNumber := binary.LittleEndian.Uint64(input.Data)
	if depositHeader.Number != depositBlockNumber {
		return 0, errors.Wrapf(ruleerrors.ErrInvalidDAOWithdraw,
			"deposit header number %d doesn't match the deposited block number %d",
			depositHeader.Number, depositBlockNumber)
	}
	withdrawingHeader, err := c.header(&input.TransactionInfo.BlockHash)
	if err != nil {
		return 0, err
	}
	return CalculateMaximumWithdraw(input.Output, uint64(len(input.Data)), depositHeader, withdrawingHeader)
}

func (c *Calculator) header(blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	header, err := c.headerProvider.GetBlockHeader(blockHash)
	if err != nil {
		return nil, err
	}
	return header.UnwrapOrErr(errors.Wrapf(ruleerrors.ErrInvalidDAOWithdraw, "unknown header %s", blockHash))
}

// CalculateMaximumWithdraw returns what a cell deposited in depositHeader's
// block and prepared for withdrawal in withdrawingHeader's block pays out.
// The occupied part earns nothing; the rest grows with the accumulated
// rate.
func CalculateMaximumWithdraw(output *externalapi.CellOutput, dataLength uint64,
	depositHeader, withdrawingHeader *externalapi.DomainBlockHeader) (externalapi.Capacity, error) {

	depositAR := Unpack(depositHeader.DAO).AR
	withdrawingAR := Unpack(withdrawingHeader.DAO).AR

	occupied, err := output.OccupiedCapacity(dataLength)
	if err != nil {
		return 0, errors.Wrap(ErrOverflow, err.Error())
	}
	counted, err := output.Capacity.SafeSub(occupied)
	if err != nil {
		return 0, errors.Wrap(ErrOverflow, err.Error())
	}
	withdrawCounted, err := mulDiv(uint64(counted), withdrawingAR, depositAR)
	if err != nil {
		return 0, err
	}
	withdraw, err := externalapi.Capacity(withdrawCounted).SafeAdd(occupied)
	if err != nil {
		return 0, errors.Wrap(ErrOverflow, err.Error())
	}
	return withdraw, nil
}

// DAOField returns the DAO field of a block at epoch on top of parent that
// commits rtxs, the cellbase included.
func (c *Calculator) DAOField(rtxs []*cell.ResolvedTransaction, parent *externalapi.DomainBlockHeader,
	epoch externalapi.EpochNumberWithFraction) (externalapi.DAOField, error) {

	var freedOccupied, addedOccupied, withdrawnInterests externalapi.Capacity
	for _, rtx := range rtxs {
		added, err := outputsOccupiedCapacity(rtx.Transaction)
		if err != nil {
			return externalapi.DAOField{}, err
		}
		addedOccupied, err = addedOccupied.SafeAdd(added)
		if err != nil {
			return externalapi.DAOField{}, errors.Wrap(ErrOverflow, err.Error())
		}
		if rtx.Transaction.IsCellbase() {
			continue
		}

		for _, input := range rtx.ResolvedInputs {
			occupied, err := input.Output.OccupiedCapacity(uint64(len(input.Data)))
			if err != nil {
				return externalapi.DAOField{}, errors.Wrap(ErrOverflow, err.Error())
			}
			freedOccupied, err = freedOccupied.SafeAdd(occupied)
			if err != nil {
				return externalapi.DAOField{}, errors.Wrap(ErrOverflow, err.Error())
			}
		}

		maximumWithdraw, err := c.MaximumWithdraw(rtx)
		if err != nil {
			return externalapi.DAOField{}, err
		}
		inputsCapacity, err := rtx.InputsCapacity()
		if err != nil {
			return externalapi.DAOField{}, errors.Wrap(ErrOverflow, err.Error())
		}
		interest, err := maximumWithdraw.SafeSub(inputsCapacity)
		if err != nil {
			return externalapi.DAOField{}, errors.Wrap(ErrOverflow, err.Error())
		}
		withdrawnInterests, err = withdrawnInterests.SafeAdd(interest)
		if err != nil {
			return externalapi.DAOField{}, errors.Wrap(ErrOverflow, err.Error())
		}
	}

	parentData := Unpack(parent.DAO)
	secondaryIssuance := c.params.SecondaryBlockReward(epoch)
	totalIssuance, err := c.params.PrimaryBlockReward(epoch).SafeAdd(secondaryIssuance)
	if err != nil {
		return externalapi.DAOField{}, errors.Wrap(ErrOverflow, err.Error())
	}

	minerIssuance, err := mulDiv(uint64(secondaryIssuance), uint64(parentData.U), uint64(parentData.C))
	if err != nil {
		return externalapi.DAOField{}, err
	}
	daoIssuance, err := secondaryIssuance.SafeSub(externalapi.Capacity(minerIssuance))
	if err != nil {
		return externalapi.DAOField{}, errors.Wrap(ErrOverflow, err.Error())
	}

	current := &Data{}
	current.C, err = parentData.C.SafeAdd(totalIssuance)
	if err != nil {
		return externalapi.DAOField{}, errors.Wrap(ErrOverflow, err.Error())
	}
	current.U, err = parentData.U.SafeAdd(addedOccupied)
	if err == nil {
		current.U, err = current.U.SafeSub(freedOccupied)
	}
	if err != nil {
		return externalapi.DAOField{}, errors.Wrap(ErrOverflow, err.Error())
	}
	current.S, err = parentData.S.SafeAdd(daoIssuance)
	if err == nil {
		current.S, err = current.S.SafeSub(withdrawnInterests)
	}
	if err != nil {
		return externalapi.DAOField{}, errors.Wrap(ErrOverflow, err.Error())
	}
	arIncrease, err := mulDiv(parentData.AR, uint64(secondaryIssuance), uint64(parentData.C))
	if err != nil {
		return externalapi.DAOField{}, err
	}
	current.AR = parentData.AR + arIncrease
	if current.AR < parentData.AR {
		return externalapi.DAOField{}, errors.Wrap(ErrOverflow, "accumulated rate")
	}
	return current.Pack(), nil
}

// GenesisDAOField returns the DAO field of a genesis block committing the
// given transactions.
func GenesisDAOField(transactions []*externalapi.DomainTransaction) (externalapi.DAOField, error) {
	genesis := &Data{AR: GenesisAccumulatedRate}
	for _, tx := range transactions {
		capacity, err := tx.OutputsCapacity()
		if err != nil {
			return externalapi.DAOField{}, errors.Wrap(ErrOverflow, err.Error())
		}
		genesis.C, err = genesis.C.SafeAdd(capacity)
		if err != nil {
			return externalapi.DAOField{}, errors.Wrap(ErrOverflow, err.Error())
		}
		occupied, err := outputsOccupiedCapacity(tx)
		if err != nil {
			return externalapi.DAOField{}, err
		}
		genesis.U, err = genesis.U.SafeAdd(occupied)
		if err != nil {
			return externalapi.DAOField{}, errors.Wrap(ErrOverflow, err.Error())
		}
	}
	return genesis.Pack(), nil
}

func outputsOccupiedCapacity(tx *externalapi.DomainTransaction) (externalapi.Capacity, error) {
	var total externalapi.Capacity
	for i, output := range tx.Outputs {
		var dataLength uint64
		if i < len(tx.OutputsData) {
			dataLength = uint64(len(tx.OutputsData[i]))
		}
		occupied, err := output.OccupiedCapacity(dataLength)
		if err != nil {
			return 0, errors.Wrap(ErrOverflow, err.Error())
		}
		total, err = total.SafeAdd(occupied)
		if err != nil {
			return 0, errors.Wrap(ErrOverflow, err.Error())
		}
	}
	return total, nil
}

// DepositData returns the data of a fresh deposit cell.
func DepositData() []byte {
	return make([]byte, depositDataSize)
}

// WithdrawingData returns the data of a withdrawing cell for a deposit
// committed in the given block.
func WithdrawingData(depositBlockNumber uint64) []byte {
	data := make([]byte, depositDataSize)
	binary.LittleEndian.PutUint64(data, depositBlockNumber)
	return data
}

