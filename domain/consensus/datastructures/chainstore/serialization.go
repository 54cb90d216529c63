package chainstore

import (
	"bytes"
	"io"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// TransactionRecord locates a committed main chain transaction.
type TransactionRecord struct {
	Info         externalapi.TransactionInfo
	OutputsCount uint32
}

func serializeTransactionInfo(w io.Writer, info *externalapi.TransactionInfo) error {
	return serialization.WriteElements(w, info.BlockHash, info.BlockNumber, info.BlockEpoch, info.Index)
}

func deserializeTransactionInfo(r io.Reader) (*externalapi.TransactionInfo, error) {
	info := &externalapi.TransactionInfo{}
	err := serialization.ReadElements(r, &info.BlockHash, &info.BlockNumber, &info.BlockEpoch, &info.Index)
	if err != nil {
		return nil, err
	}
	return info, nil
}

func serializeTransactionRecord(record *TransactionRecord) []byte {
	var buf bytes.Buffer
	err := serializeTransactionInfo(&buf, &record.Info)
	if err == nil {
		err = serialization.WriteElement(&buf, record.OutputsCount)
	}
	if err != nil {
		panic(errors.Wrap(err, "writing to a bytes.Buffer never fails"))
	}
	return buf.Bytes()
}

func deserializeTransactionRecord(recordBytes []byte) (*TransactionRecord, error) {
	reader := bytes.NewReader(recordBytes)
	info, err := deserializeTransactionInfo(reader)
	if err != nil {
		return nil, err
	}
	record := &TransactionRecord{Info: *info}
	err = serialization.ReadElement(reader, &record.OutputsCount)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// serializeCell writes a committed cell: its outpoint, output, data and
// commit info.
func serializeCell(w io.Writer, meta *externalapi.CellMeta) error {
	err := serialization.SerializeOutPoint(w, &meta.OutPoint)
	if err != nil {
		return err
	}
	err = serialization.SerializeCellOutput(w, meta.Output)
	if err != nil {
		return err
	}
	err = serialization.WriteVarBytes(w, meta.Data)
	if err != nil {
		return err
	}
	return serializeTransactionInfo(w, meta.TransactionInfo)
}

func deserializeCell(r io.Reader) (*externalapi.CellMeta, error) {
	outPoint, err := serialization.DeserializeOutPoint(r)
	if err != nil {
		return nil, err
	}
	output, err := serialization.DeserializeCellOutput(r)
	if err != nil {
		return nil, err
	}
	data, err := serialization.ReadVarBytes(r)
	if err != nil {
		return nil, err
	}
	info, err := deserializeTransactionInfo(r)
	if err != nil {
		return nil, err
	}
	return &externalapi.CellMeta{OutPoint: *outPoint, Output: output, Data: data, TransactionInfo: info}, nil
}

func cellToBytes(meta *externalapi.CellMeta) []byte {
	var buf bytes.Buffer
	err := serializeCell(&buf, meta)
	if err != nil {
		panic(errors.Wrap(err, "writing to a bytes.Buffer never fails"))
	}
	return buf.Bytes()
}

func cellFromBytes(cellBytes []byte) (*externalapi.CellMeta, error) {
	return deserializeCell(bytes.NewReader(cellBytes))
}

// undoToBytes serializes the cells a block spent, in spending order.
func undoToBytes(spent []*externalapi.CellMeta) []byte {
	var buf bytes.Buffer
	err := serialization.WriteElement(&buf, uint32(len(spent)))
	for i := 0; err == nil && i < len(spent); i++ {
		err = serializeCell(&buf, spent[i])
	}
	if err != nil {
		panic(errors.Wrap(err, "writing to a bytes.Buffer never fails"))
	}
	return buf.Bytes()
}

func undoFromBytes(undoBytes []byte) ([]*externalapi.CellMeta, error) {
	reader := bytes.NewReader(undoBytes)
	var count uint32
	err := serialization.ReadElement(reader, &count)
	if err != nil {
		return nil, err
	}
	spent := make([]*externalapi.CellMeta, 0, count)
	for i := uint32(0); i < count; i++ {
		meta, err := deserializeCell(reader)
		if err != nil {
			return nil, err
		}
		spent = append(spent, meta)
	}
	return spent, nil
}

func uint64ToBytes(value uint64) []byte {
	var buf bytes.Buffer
	err := serialization.WriteElement(&buf, value)
	if err != nil {
		panic(errors.Wrap(err, "writing to a bytes.Buffer never fails"))
	}
	return buf.Bytes()
}

func uint64FromBytes(valueBytes []byte) (uint64, error) {
	var value uint64
	err := serialization.ReadElement(bytes.NewReader(valueBytes), &value)
	return value, err
}
