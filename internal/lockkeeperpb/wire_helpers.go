// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package lockkeeperpb

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/rkhiriev/lock-keeper/internal/apperr"
)

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// fieldVisitor is called once per field encountered while decoding a
// message; it returns the number of bytes consumed (without the tag,
// which the caller already skipped) or -1 on error.
type fieldVisitor func(num protowire.Number, typ protowire.Type, b []byte) int

// decodeFields walks b field by field, dispatching to visit for each tag.
// Fields visit does not recognize (it returns 0 without consuming) are
// skipped via protowire.ConsumeFieldValue, the standard unknown-field
// discipline.
func decodeFields(b []byte, visit fieldVisitor) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return apperr.Wrap(apperr.KindInvalidMessage, protowire.ParseError(n))
		}
		b = b[n:]

		consumed := visit(num, typ, b)
		if consumed < 0 {
			return apperr.New(apperr.KindInvalidMessage)
		}
		if consumed == 0 {
			consumed = protowire.ConsumeFieldValue(num, typ, b)
			if consumed < 0 {
				return apperr.Wrap(apperr.KindInvalidMessage, protowire.ParseError(consumed))
			}
		}
		b = b[consumed:]
	}
	return nil
}

func consumeBytesExact(b []byte, n int) ([]byte, int, error) {
	v, consumed := protowire.ConsumeBytes(b)
	if consumed < 0 {
		return nil, 0, apperr.Wrap(apperr.KindInvalidMessage, protowire.ParseError(consumed))
	}
	if n >= 0 && len(v) != n {
		return nil, 0, apperr.New(apperr.KindInvalidMessage)
	}
	return v, consumed, nil
}
