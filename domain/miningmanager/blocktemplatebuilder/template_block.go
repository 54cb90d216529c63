package blocktemplatebuilder

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/snapshot"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/consensus/utils/dao"
	"github.com/cellnetwork/celld/domain/consensus/utils/serialization"
	"github.com/cellnetwork/celld/domain/miningmanager/model"
	"github.com/pkg/errors"
)

// buildCellbase returns the cellbase of the block built from template,
// paying reward to the assembler lock. A reward too small to occupy its own
// cell is dropped.
func buildCellbase(template *externalapi.DomainBlockTemplate, assembler *model.BlockAssembler,
	reward externalapi.Capacity) (*externalapi.DomainTransaction, error) {

	cellbase := &externalapi.DomainTransaction{
		Inputs: []*externalapi.CellInput{{
			Since:          template.Number,
			PreviousOutput: externalapi.NullOutPoint(),
		}},
		Witnesses: [][]byte{serialization.CellbaseWitnessToBytes(assembler.Lock, assembler.Message)},
	}

	output := &externalapi.CellOutput{Capacity: reward, Lock: assembler.Lock}
	occupied, err := output.OccupiedCapacity(0)
	if err != nil {
		return nil, err
	}
	if reward >= occupied {
		cellbase.Outputs = []*externalapi.CellOutput{output}
		cellbase.OutputsData = [][]byte{nil}
	}
	return cellbase, nil
}

// BlockFromTemplate returns the block a miner builds from template, before
// any nonce is set.
func BlockFromTemplate(template *externalapi.DomainBlockTemplate) *externalapi.DomainBlock {
	block := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Version:       template.Version,
			CompactTarget: template.CompactTarget,
			Timestamp:     template.CurrentTime,
			Number:        template.Number,
			Epoch:         template.Epoch,
			ParentHash:    template.ParentHash,
			DAO:           template.DAO,
		},
		Uncles:       make([]*externalapi.UncleBlock, len(template.Uncles)),
		Transactions: make([]*externalapi.DomainTransaction, 0, len(template.Transactions)+1),
		Proposals:    template.Proposals,
		Extension:    template.Extension,
	}
	for i, uncle := range template.Uncles {
		block.Uncles[i] = &externalapi.UncleBlock{Header: uncle.Header, Proposals: uncle.Proposals}
	}
	if template.Cellbase != nil {
		block.Transactions = append(block.Transactions, template.Cellbase.Data)
	}
	for _, transaction := range template.Transactions {
		block.Transactions = append(block.Transactions, transaction.Data)
	}

	block.Header.TransactionsRoot = *consensushashing.TransactionsRoot(block.Transactions)
	block.Header.ProposalsHash = *consensushashing.ProposalsHash(block.Proposals)
	block.Header.ExtraHash = *consensushashing.ExtraHash(block.Uncles, block.Extension)
	return block
}

// CalculateDAOField returns the DAO field of the block built from
// template on top of the tip of current. The cellbase and the template
// transactions are resolved in template order against each other and the
// chain, under the hard fork features of the template's epoch.
func CalculateDAOField(current *snapshot.Snapshot,
	template *externalapi.DomainBlockTemplate) (externalapi.DAOField, error) {

	parentOption, err := current.GetBlockHeader(&template.ParentHash)
	if err != nil {
		return externalapi.DAOField{}, err
	}
	if parentOption.IsNone() {
		return externalapi.DAOField{}, errors.Errorf("template parent %s is unknown", template.ParentHash)
	}
	parent := parentOption.UnsafeFromSome()

	transactions := make([]*externalapi.DomainTransaction, 0, len(template.Transactions)+1)
	if template.Cellbase != nil {
		transactions = append(transactions, template.Cellbase.Data)
	}
	for _, transaction := range template.Transactions {
		transactions = append(transactions, transaction.Data)
	}

	params := current.Params()
	provider := cell.NewOverlayProvider(cell.NewTransactionsProvider(transactions), current)
	options := cell.NewResolveOptions(params.HardforkSwitch.FeatureSet(template.Epoch.Number()))
	seenInputs := make(cell.SeenInputs)
	resolved := make([]*cell.ResolvedTransaction, len(transactions))
	for i, transaction := range transactions {
		resolved[i], err = cell.ResolveTransaction(transaction, seenInputs, provider, current, options)
		if err != nil {
			return externalapi.DAOField{}, err
		}
	}
	return dao.NewCalculator(params, current).DAOField(resolved, parent, template.Epoch)
}
