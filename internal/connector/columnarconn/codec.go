package columnarconn

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"dte/internal/value"
)

func writeUvarint(w io.Writer, v uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	_, err := w.Write(buf[:n])
	return err
}

func readUvarint(r io.ByteReader) (uint64, error) {
	return binary.ReadUvarint(r)
}

func writeString(w io.Writer, s string) error {
	if err := writeUvarint(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r interface {
	io.ByteReader
	io.Reader
}) (string, error) {
	n, err := readUvarint(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// writeValue encodes a non-null Value's payload. Integer is a fixed 8-byte
// little-endian field; every other kind is carried as its canonical string
// form, length-prefixed, so the format never needs to special-case decimal
// precision or date/datetime layout beyond what CanonicalString already
// defines (§4.1).
func writeValue(w io.Writer, v value.Value) error {
	if v.Kind() == value.KindInteger {
		i, _ := v.IntegerVal()
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		_, err := w.Write(buf[:])
		return err
	}
	if v.Kind() == value.KindBoolean {
		b, _ := v.BooleanVal()
		_, err := w.Write([]byte{boolByte(b)})
		return err
	}
	s, err := value.CanonicalString(v)
	if err != nil {
		return err
	}
	return writeString(w, s)
}

func readValue(r interface {
	io.ByteReader
	io.Reader
}, kind value.Kind) (value.Value, error) {
	switch kind {
	case value.KindInteger:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return value.Value{}, err
		}
		return value.NewInteger(int64(binary.LittleEndian.Uint64(buf[:]))), nil
	case value.KindBoolean:
		b, err := r.ReadByte()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewBoolean(b == 1), nil
	case value.KindDecimal:
		s, err := readString(r)
		if err != nil {
			return value.Value{}, err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewDecimal(d), nil
	case value.KindDate:
		s, err := readString(r)
		if err != nil {
			return value.Value{}, err
		}
		d, ok := value.ParseDateLiteral(s)
		if !ok {
			return value.Value{}, fmt.Errorf("columnarconn: bad date literal %q", s)
		}
		return value.NewDate(d), nil
	case value.KindDateTime:
		s, err := readString(r)
		if err != nil {
			return value.Value{}, err
		}
		t, ok := value.ParseDateTimeLiteral(s)
		if !ok {
			return value.Value{}, fmt.Errorf("columnarconn: bad datetime literal %q", s)
		}
		return value.NewDateTime(t), nil
	default:
		s, err := readString(r)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewString(s), nil
	}
}
