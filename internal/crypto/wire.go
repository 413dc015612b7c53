// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"encoding/binary"
)

// MarshalBinary serializes e as a length-prefixed record:
//
//	u32(len(ciphertext)) ∥ ciphertext ∥
//	u32(len(associated_data)) ∥ associated_data ∥
//	nonce (fixed 12 bytes)
//
// This is the on-the-wire representation of every [Encrypted] value sent
// between client and server (storage keys, secrets, session keys, channel
// frames).
func (e Encrypted) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, 4+len(e.Ciphertext)+4+len(e.AssociatedData.Bytes())+len(e.Nonce))

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(e.Ciphertext)))
	out = append(out, lenBuf[:]...)
	out = append(out, e.Ciphertext...)

	ad := e.AssociatedData.Bytes()
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(ad)))
	out = append(out, lenBuf[:]...)
	out = append(out, ad...)

	out = append(out, e.Nonce[:]...)
	return out, nil
}

// UnmarshalEncrypted parses the format produced by [Encrypted.MarshalBinary].
func UnmarshalEncrypted(b []byte) (Encrypted, error) {
	p := parser{data: b}

	ciphertext, err := p.takeLenPrefixed()
	if err != nil {
		return Encrypted{}, err
	}
	ad, err := p.takeLenPrefixed()
	if err != nil {
		return Encrypted{}, err
	}
	nonceBytes, err := p.take(12)
	if err != nil {
		return Encrypted{}, err
	}

	var e Encrypted
	e.Ciphertext = ciphertext
	e.AssociatedData = AssociatedData{data: ad}
	copy(e.Nonce[:], nonceBytes)
	return e, nil
}

// parser is a small cursor over a byte slice used by the wire-format
// parsers in this package, mirroring the source's ParseBytes helper.
type parser struct {
	data []byte
	pos  int
}

func (p *parser) take(n int) ([]byte, error) {
	if p.pos+n > len(p.data) {
		return nil, ErrConversionError
	}
	out := p.data[p.pos : p.pos+n]
	p.pos += n
	return out, nil
}

func (p *parser) takeLenPrefixed() ([]byte, error) {
	lenBytes, err := p.take(4)
	if err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBytes)
	return p.take(int(n))
}
