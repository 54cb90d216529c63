package model

import (
	"sort"

	"github.com/pkg/errors"
)

// TransactionsOrderedByFeeRate represents a set of MempoolTransactions ordered by their fee / size rate,
// lowest rate first
type TransactionsOrderedByFeeRate struct {
	slice []*MempoolTransaction
}

// Push inserts a transaction into the set, placing it in the correct place to preserve order
func (tobf *TransactionsOrderedByFeeRate) Push(transaction *MempoolTransaction) error {
	index, err := tobf.findTransactionIndex(transaction)
	if err != nil {
		return err
	}

	tobf.slice = append(tobf.slice[:index],
		append([]*MempoolTransaction{transaction}, tobf.slice[index:]...)...)

	return nil
}

// Remove removes the given transaction from the set.
// Returns an error if transaction does not exist in the set, or if the given transaction does not have
// a size filled in.
func (tobf *TransactionsOrderedByFeeRate) Remove(transaction *MempoolTransaction) error {
	index, err := tobf.findTransactionIndex(transaction)
	if err != nil {
		return err
	}

	if index == len(tobf.slice) || !tobf.slice[index].Hash().Equal(transaction.Hash()) {
		return errors.Errorf("Couldn't find %s in mp.orderedTransactionsByFeeRate", transaction.Hash())
	}

	return tobf.RemoveAtIndex(index)
}

// RemoveAtIndex removes the transaction at the given index.
// Returns an error in case of out-of-bounds index.
func (tobf *TransactionsOrderedByFeeRate) RemoveAtIndex(index int) error {
	if index < 0 || index > len(tobf.slice)-1 {
		return errors.Errorf("Index %d is out of bound of this TransactionsOrderedByFeeRate", index)
	}
	tobf.slice = append(tobf.slice[:index], tobf.slice[index+1:]...)
	return nil
}

// GetByIndex returns the transaction at the given index, where index 0 has the lowest fee rate
func (tobf *TransactionsOrderedByFeeRate) GetByIndex(index int) *MempoolTransaction {
	return tobf.slice[index]
}

// Len returns the number of transactions in the set
func (tobf *TransactionsOrderedByFeeRate) Len() int {
	return len(tobf.slice)
}

// Descending returns the transactions from the highest fee rate to the lowest
func (tobf *TransactionsOrderedByFeeRate) Descending() []*MempoolTransaction {
	result := make([]*MempoolTransaction, len(tobf.slice))
	for i, transaction := range tobf.slice {
		result[len(tobf.slice)-1-i] = transaction
	}
	return result
}

func (tobf *TransactionsOrderedByFeeRate) findTransactionIndex(transaction *MempoolTransaction) (int, error) {
	if transaction.Size() == 0 {
		return 0, errors.Errorf("findTransactionIndex expects a transaction with a populated size")
	}
	hash := transaction.Hash()

	return sort.Search(len(tobf.slice), func(i int) bool {
		element := tobf.slice[i]
		comparison := CompareFeeRates(element.Fee(), element.Size(), transaction.Fee(), transaction.Size())
		if comparison > 0 {
			return true
		}
		return comparison == 0 && !element.Hash().Less(hash)
	}), nil
}
