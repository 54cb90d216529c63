package serialization

import (
	"bytes"
	"io"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// SerializeWitnessArgs writes witness args. Each field is preceded by a
// presence flag.
func SerializeWitnessArgs(w io.Writer, args *externalapi.WitnessArgs) error {
	for _, field := range [][]byte{args.Lock, args.InputType, args.OutputType} {
		err := WriteElement(w, field != nil)
		if err != nil {
			return err
		}
		if field != nil {
			err = WriteVarBytes(w, field)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// WitnessArgsToBytes serializes witness args.
func WitnessArgsToBytes(args *externalapi.WitnessArgs) []byte {
	var buf bytes.Buffer
	err := SerializeWitnessArgs(&buf, args)
	if err != nil {
		panic(errors.Wrap(err, "writing to a bytes.Buffer never fails"))
	}
	return buf.Bytes()
}

// WitnessArgsFromBytes parses a witness as witness args and rejects
// trailing bytes.
func WitnessArgsFromBytes(witness []byte) (*externalapi.WitnessArgs, error) {
	reader := bytes.NewReader(witness)
	args := &externalapi.WitnessArgs{}
	for _, field := range []*[]byte{&args.Lock, &args.InputType, &args.OutputType} {
		var present bool
		err := ReadElement(reader, &present)
		if err != nil {
			return nil, err
		}
		if present {
			*field, err = ReadVarBytes(reader)
			if err != nil {
				return nil, err
			}
		}
	}
	if reader.Len() != 0 {
		return nil, errors.Wrapf(ErrMalformed, "%d trailing bytes after witness args", reader.Len())
	}
	return args, nil
}

// CellbaseWitnessToBytes serializes the witness of a cellbase: the lock
// script the block reward is paid to, followed by the miner message.
func CellbaseWitnessToBytes(lock *externalapi.Script, message []byte) []byte {
	var buf bytes.Buffer
	err := SerializeScript(&buf, lock)
	if err == nil {
		err = WriteVarBytes(&buf, message)
	}
	if err != nil {
		panic(errors.Wrap(err, "writing to a bytes.Buffer never fails"))
	}
	return buf.Bytes()
}

// CellbaseWitnessFromBytes parses a cellbase witness.
func CellbaseWitnessFromBytes(witness []byte) (*externalapi.Script, []byte, error) {
	reader := bytes.NewReader(witness)
	lock, err := DeserializeScript(reader)
	if err != nil {
		return nil, nil, err
	}
	message, err := ReadVarBytes(reader)
	if err != nil {
		return nil, nil, err
	}
	if reader.Len() != 0 {
		return nil, nil, errors.Wrapf(ErrMalformed, "%d trailing bytes after cellbase witness", reader.Len())
	}
	return lock, message, nil
}
