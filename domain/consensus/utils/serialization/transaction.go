package serialization

import (
	"bytes"
	"io"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

const maxElementsPerList = 1 << 20

// SerializeScript writes a script.
func SerializeScript(w io.Writer, script *externalapi.Script) error {
	return WriteElements(w, script.CodeHash, uint8(script.HashType), script.Args)
}

// DeserializeScript reads a script written by SerializeScript.
func DeserializeScript(r io.Reader) (*externalapi.Script, error) {
	script := &externalapi.Script{}
	var hashType uint8
	err := ReadElements(r, &script.CodeHash, &hashType, &script.Args)
	if err != nil {
		return nil, err
	}
	if hashType > uint8(externalapi.ScriptHashTypeData1) {
		return nil, errors.Wrapf(ErrMalformed, "unknown script hash type %d", hashType)
	}
	script.HashType = externalapi.ScriptHashType(hashType)
	return script, nil
}

// SerializeOutPoint writes an outpoint.
func SerializeOutPoint(w io.Writer, outPoint *externalapi.OutPoint) error {
	return WriteElements(w, outPoint.TxHash, outPoint.Index)
}

// DeserializeOutPoint reads an outpoint.
func DeserializeOutPoint(r io.Reader) (*externalapi.OutPoint, error) {
	outPoint := &externalapi.OutPoint{}
	err := ReadElements(r, &outPoint.TxHash, &outPoint.Index)
	if err != nil {
		return nil, err
	}
	return outPoint, nil
}

// SerializeCellOutput writes a cell output. The type script is preceded by
// a presence flag.
func SerializeCellOutput(w io.Writer, output *externalapi.CellOutput) error {
	err := WriteElement(w, output.Capacity)
	if err != nil {
		return err
	}
	err = SerializeScript(w, output.Lock)
	if err != nil {
		return err
	}
	err = WriteElement(w, output.Type != nil)
	if err != nil {
		return err
	}
	if output.Type != nil {
		return SerializeScript(w, output.Type)
	}
	return nil
}

// DeserializeCellOutput reads a cell output.
func DeserializeCellOutput(r io.Reader) (*externalapi.CellOutput, error) {
	output := &externalapi.CellOutput{}
	err := ReadElement(r, &output.Capacity)
	if err != nil {
		return nil, err
	}
	output.Lock, err = DeserializeScript(r)
	if err != nil {
		return nil, err
	}
	var hasType bool
	err = ReadElement(r, &hasType)
	if err != nil {
		return nil, err
	}
	if hasType {
		output.Type, err = DeserializeScript(r)
		if err != nil {
			return nil, err
		}
	}
	return output, nil
}

// SerializeTransaction writes tx. Witnesses are only written when
// includeWitnesses is set; the transaction hash covers the encoding without
// them.
func SerializeTransaction(w io.Writer, tx *externalapi.DomainTransaction, includeWitnesses bool) error {
	err := WriteElements(w, tx.Version, uint32(len(tx.CellDeps)))
	if err != nil {
		return err
	}
	for _, cellDep := range tx.CellDeps {
		err = WriteElements(w, cellDep.OutPoint.TxHash, cellDep.OutPoint.Index, uint8(cellDep.DepType))
		if err != nil {
			return err
		}
	}

	err = WriteElement(w, uint32(len(tx.HeaderDeps)))
	if err != nil {
		return err
	}
	for _, headerDep := range tx.HeaderDeps {
		err = WriteElement(w, headerDep)
		if err != nil {
			return err
		}
	}

	err = WriteElement(w, uint32(len(tx.Inputs)))
	if err != nil {
		return err
	}
	for _, input := range tx.Inputs {
		err = WriteElements(w, input.Since, input.PreviousOutput.TxHash, input.PreviousOutput.Index)
		if err != nil {
			return err
		}
	}

	err = WriteElement(w, uint32(len(tx.Outputs)))
	if err != nil {
		return err
	}
	for _, output := range tx.Outputs {
		err = SerializeCellOutput(w, output)
		if err != nil {
			return err
		}
	}

	err = writeByteSlices(w, tx.OutputsData)
	if err != nil {
		return err
	}

	if includeWitnesses {
		return writeByteSlices(w, tx.Witnesses)
	}
	return nil
}

// DeserializeTransaction reads a transaction serialized with witnesses.
func DeserializeTransaction(r io.Reader) (*externalapi.DomainTransaction, error) {
	tx := &externalapi.DomainTransaction{}
	err := ReadElement(r, &tx.Version)
	if err != nil {
		return nil, err
	}

	count, err := readCount(r, maxElementsPerList)
	if err != nil {
		return nil, err
	}
	tx.CellDeps = make([]*externalapi.CellDep, count)
	for i := range tx.CellDeps {
		cellDep := &externalapi.CellDep{}
		var depType uint8
		err = ReadElements(r, &cellDep.OutPoint.TxHash, &cellDep.OutPoint.Index, &depType)
		if err != nil {
			return nil, err
		}
		if depType > uint8(externalapi.DepTypeDepGroup) {
			return nil, errors.Wrapf(ErrMalformed, "unknown dep type %d", depType)
		}
		cellDep.DepType = externalapi.DepType(depType)
		tx.CellDeps[i] = cellDep
	}

	count, err = readCount(r, maxElementsPerList)
	if err != nil {
		return nil, err
	}
	tx.HeaderDeps = make([]externalapi.DomainHash, count)
	for i := range tx.HeaderDeps {
		err = ReadElement(r, &tx.HeaderDeps[i])
		if err != nil {
			return nil, err
		}
	}

	count, err = readCount(r, maxElementsPerList)
	if err != nil {
		return nil, err
	}
	tx.Inputs = make([]*externalapi.CellInput, count)
	for i := range tx.Inputs {
		input := &externalapi.CellInput{}
		err = ReadElements(r, &input.Since, &input.PreviousOutput.TxHash, &input.PreviousOutput.Index)
		if err != nil {
			return nil, err
		}
		tx.Inputs[i] = input
	}

	count, err = readCount(r, maxElementsPerList)
	if err != nil {
		return nil, err
	}
	tx.Outputs = make([]*externalapi.CellOutput, count)
	for i := range tx.Outputs {
		tx.Outputs[i], err = DeserializeCellOutput(r)
		if err != nil {
			return nil, err
		}
	}

	tx.OutputsData, err = readByteSlices(r)
	if err != nil {
		return nil, err
	}
	tx.Witnesses, err = readByteSlices(r)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// TransactionSize returns the serialized size of tx including witnesses.
func TransactionSize(tx *externalapi.DomainTransaction) uint64 {
	var buf bytes.Buffer
	err := SerializeTransaction(&buf, tx, true)
	if err != nil {
		panic(errors.Wrap(err, "writing to a bytes.Buffer never fails"))
	}
	return uint64(buf.Len())
}

// TransactionToBytes serializes tx including witnesses.
func TransactionToBytes(tx *externalapi.DomainTransaction) []byte {
	var buf bytes.Buffer
	err := SerializeTransaction(&buf, tx, true)
	if err != nil {
		panic(errors.Wrap(err, "writing to a bytes.Buffer never fails"))
	}
	return buf.Bytes()
}

// TransactionFromBytes deserializes a transaction and rejects trailing bytes.
func TransactionFromBytes(serialized []byte) (*externalapi.DomainTransaction, error) {
	reader := bytes.NewReader(serialized)
	tx, err := DeserializeTransaction(reader)
	if err != nil {
		return nil, err
	}
	if reader.Len() != 0 {
		return nil, errors.Wrapf(ErrMalformed, "%d trailing bytes after transaction", reader.Len())
	}
	return tx, nil
}

// SerializeOutPoints writes a list of outpoints. Dep group cells carry this
// encoding as their data.
func SerializeOutPoints(w io.Writer, outPoints []externalapi.OutPoint) error {
	err := WriteElement(w, uint32(len(outPoints)))
	if err != nil {
		return err
	}
	for i := range outPoints {
		err = SerializeOutPoint(w, &outPoints[i])
		if err != nil {
			return err
		}
	}
	return nil
}

// DeserializeOutPoints reads a list written by SerializeOutPoints and
// rejects trailing bytes.
func DeserializeOutPoints(data []byte) ([]externalapi.OutPoint, error) {
	reader := bytes.NewReader(data)
	count, err := readCount(reader, maxElementsPerList)
	if err != nil {
		return nil, err
	}
	outPoints := make([]externalapi.OutPoint, count)
	for i := range outPoints {
		outPoint, err := DeserializeOutPoint(reader)
		if err != nil {
			return nil, err
		}
		outPoints[i] = *outPoint
	}
	if reader.Len() != 0 {
		return nil, errors.Wrapf(ErrMalformed, "%d trailing bytes after outpoints", reader.Len())
	}
	return outPoints, nil
}

func writeByteSlices(w io.Writer, slices [][]byte) error {
	err := WriteElement(w, uint32(len(slices)))
	if err != nil {
		return err
	}
	for _, slice := range slices {
		err = WriteVarBytes(w, slice)
		if err != nil {
			return err
		}
	}
	return nil
}

func readByteSlices(r io.Reader) ([][]byte, error) {
	count, err := readCount(r, maxElementsPerList)
	if err != nil {
		return nil, err
	}
	slices := make([][]byte, count)
	for i := range slices {
		slices[i], err = ReadVarBytes(r)
		if err != nil {
			return nil, err
		}
	}
	return slices, nil
}
