package cell

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
)

// StatusKind is the liveness of a cell as seen by one provider.
type StatusKind uint8

// Cell statuses.
const (
	StatusUnknown StatusKind = iota
	StatusLive
	StatusDead
)

// Status is the answer of a CellProvider. Cell is set only for live cells.
type Status struct {
	Kind StatusKind
	Cell *externalapi.CellMeta
}

// Live returns the status of a live cell.
func Live(meta *externalapi.CellMeta) Status {
	return Status{Kind: StatusLive, Cell: meta}
}

// Dead returns the status of a consumed cell.
func Dead() Status {
	return Status{Kind: StatusDead}
}

// Unknown returns the status of a cell the provider knows nothing about.
func Unknown() Status {
	return Status{Kind: StatusUnknown}
}

// Provider looks up cells. A non-nil error is a storage fault, not a
// resolution failure.
type Provider interface {
	Cell(outPoint *externalapi.OutPoint) (Status, error)
}

// HeaderChecker validates header deps. It returns an OutPointError for a
// header that may not be depended on.
type HeaderChecker interface {
	CheckValid(blockHash *externalapi.DomainHash) error
}

type overlayProvider struct {
	overlay  Provider
	provider Provider
}

// NewOverlayProvider returns a provider that answers from overlay and falls
// back to provider for cells overlay doesn't know.
func NewOverlayProvider(overlay, provider Provider) Provider {
	return &overlayProvider{overlay: overlay, provider: provider}
}

func (op *overlayProvider) Cell(outPoint *externalapi.OutPoint) (Status, error) {
	status, err := op.overlay.Cell(outPoint)
	if err != nil {
		return Status{}, err
	}
	if status.Kind != StatusUnknown {
		return status, nil
	}
	return op.provider.Cell(outPoint)
}

type transactionsProvider struct {
	transactions map[externalapi.DomainHash]*externalapi.DomainTransaction
}

// NewTransactionsProvider returns a provider of the outputs of transactions
// that aren't committed yet. It never reports a cell as dead.
func NewTransactionsProvider(transactions []*externalapi.DomainTransaction) Provider {
	provider := &transactionsProvider{
		transactions: make(map[externalapi.DomainHash]*externalapi.DomainTransaction, len(transactions)),
	}
	for _, tx := range transactions {
		provider.transactions[*consensushashing.TransactionHash(tx)] = tx
	}
	return provider
}

func (tp *transactionsProvider) Cell(outPoint *externalapi.OutPoint) (Status, error) {
	tx, ok := tp.transactions[outPoint.TxHash]
	if !ok {
		return Unknown(), nil
	}
	meta, ok := NewCellMeta(tx, outPoint, nil)
	if !ok {
		return Unknown(), nil
	}
	return Live(meta), nil
}

// NewCellMeta returns the cell outPoint points to in tx, which must be the
// transaction outPoint.TxHash refers to.
func NewCellMeta(tx *externalapi.DomainTransaction, outPoint *externalapi.OutPoint,
	info *externalapi.TransactionInfo) (*externalapi.CellMeta, bool) {

	output, data, ok := tx.OutputWithData(outPoint.Index)
	if !ok {
		return nil, false
	}
	return &externalapi.CellMeta{
		OutPoint:        *outPoint,
		Output:          output,
		Data:            data,
		TransactionInfo: info,
	}, true
}
