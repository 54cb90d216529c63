package serialization

import (
	"encoding/binary"
	"io"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// errNoEncodingForType signifies that there's no encoding for the given type.
var errNoEncodingForType = errors.New("there's no encoding for this type")

// ErrMalformed is returned when decoding input that is not a valid encoding.
var ErrMalformed = errors.New("malformed serialization")

// MaxVarBytesLength bounds any length-prefixed byte string read from input.
const MaxVarBytesLength = 32 * 1024 * 1024

// WriteElement writes the little endian representation of element to w.
func WriteElement(w io.Writer, element interface{}) error {
	var buf [8]byte
	switch e := element.(type) {
	case uint8:
		buf[0] = e
		return write(w, buf[:1])

	case bool:
		if e {
			buf[0] = 1
		}
		return write(w, buf[:1])

	case uint32:
		binary.LittleEndian.PutUint32(buf[:4], e)
		return write(w, buf[:4])

	case uint64:
		binary.LittleEndian.PutUint64(buf[:], e)
		return write(w, buf[:])

	case externalapi.Capacity:
		binary.LittleEndian.PutUint64(buf[:], uint64(e))
		return write(w, buf[:])

	case externalapi.EpochNumberWithFraction:
		binary.LittleEndian.PutUint64(buf[:], uint64(e))
		return write(w, buf[:])

	case externalapi.DomainHash:
		return write(w, e.ByteSlice())

	case *externalapi.DomainHash:
		return write(w, e.ByteSlice())

	case externalapi.ProposalShortID:
		return write(w, e[:])

	case externalapi.DAOField:
		return write(w, e[:])

	case []byte:
		return WriteVarBytes(w, e)
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to write type %T", element)
}

// WriteElements writes multiple items to w. It is equivalent to multiple
// calls to WriteElement.
func WriteElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := WriteElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteVarBytes writes a uint32 length followed by the bytes.
func WriteVarBytes(w io.Writer, bytes []byte) error {
	err := WriteElement(w, uint32(len(bytes)))
	if err != nil {
		return err
	}
	return write(w, bytes)
}

func write(w io.Writer, p []byte) error {
	_, err := w.Write(p)
	return errors.WithStack(err)
}

// ReadElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element pointed to.
func ReadElement(r io.Reader, element interface{}) error {
	var buf [8]byte
	switch e := element.(type) {
	case *uint8:
		if err := readFull(r, buf[:1]); err != nil {
			return err
		}
		*e = buf[0]
		return nil

	case *bool:
		if err := readFull(r, buf[:1]); err != nil {
			return err
		}
		if buf[0] > 1 {
			return errors.Wrapf(ErrMalformed, "invalid bool byte %d", buf[0])
		}
		*e = buf[0] == 1
		return nil

	case *uint32:
		if err := readFull(r, buf[:4]); err != nil {
			return err
		}
		*e = binary.LittleEndian.Uint32(buf[:4])
		return nil

	case *uint64:
		if err := readFull(r, buf[:]); err != nil {
			return err
		}
		*e = binary.LittleEndian.Uint64(buf[:])
		return nil

	case *externalapi.Capacity:
		if err := readFull(r, buf[:]); err != nil {
			return err
		}
		*e = externalapi.Capacity(binary.LittleEndian.Uint64(buf[:]))
		return nil

	case *externalapi.EpochNumberWithFraction:
		if err := readFull(r, buf[:]); err != nil {
			return err
		}
		*e = externalapi.EpochNumberWithFraction(binary.LittleEndian.Uint64(buf[:]))
		return nil

	case *externalapi.DomainHash:
		var hashBytes [externalapi.DomainHashSize]byte
		if err := readFull(r, hashBytes[:]); err != nil {
			return err
		}
		*e = *externalapi.NewDomainHashFromByteArray(&hashBytes)
		return nil

	case *externalapi.ProposalShortID:
		return readFull(r, e[:])

	case *externalapi.DAOField:
		return readFull(r, e[:])

	case *[]byte:
		bytes, err := ReadVarBytes(r)
		if err != nil {
			return err
		}
		*e = bytes
		return nil
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to read type %T", element)
}

// ReadElements reads multiple items from r. It is equivalent to multiple
// calls to ReadElement.
func ReadElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := ReadElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadVarBytes reads a uint32 length followed by that many bytes.
func ReadVarBytes(r io.Reader) ([]byte, error) {
	var length uint32
	err := ReadElement(r, &length)
	if err != nil {
		return nil, err
	}
	if length > MaxVarBytesLength {
		return nil, errors.Wrapf(ErrMalformed, "byte string of length %d exceeds the maximum %d",
			length, MaxVarBytesLength)
	}
	bytes := make([]byte, length)
	err = readFull(r, bytes)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

// readCount reads a uint32 element count and rejects counts above limit.
func readCount(r io.Reader, limit uint32) (uint32, error) {
	var count uint32
	err := ReadElement(r, &count)
	if err != nil {
		return 0, err
	}
	if count > limit {
		return 0, errors.Wrapf(ErrMalformed, "count %d exceeds the maximum %d", count, limit)
	}
	return count, nil
}

func readFull(r io.Reader, p []byte) error {
	_, err := io.ReadFull(r, p)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return errors.Wrapf(ErrMalformed, "unexpected end of input: %s", err)
		}
		return errors.WithStack(err)
	}
	return nil
}
