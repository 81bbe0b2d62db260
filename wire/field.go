/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package wire is the STEP field codec: encoding and decoding of a single
// tag=value<SOH> field, and the checksum arithmetic the message codec builds
// on. Every decode here hands back a zero-copy view into the caller's
// buffer — no field is ever copied out before the caller decides it wants
// to keep it.
//
// HOT PATH: every function in this file runs once per field, on every
// message received. Avoid allocation on the decode side.
package wire

import (
	"strconv"

	"github.com/SSEDev/OrientalExpress/constants"
	"github.com/SSEDev/OrientalExpress/stepcode"
)

// SOH is the field delimiter, ASCII 0x01.
const SOH = 0x01

// Field is a zero-copy view of one decoded tag=value pair: Value is a
// subslice of the buffer passed to Decode/DecodeBinary, valid only as long
// as that buffer is not reused.
type Field struct {
	Tag   constants.Tag
	Value []byte
}

// Int64 returns the field's value parsed as a bare decimal integer,
// rejecting a leading zero on a multi-digit value and any non-digit byte.
func (f Field) Int64() (int64, error) {
	if err := checkNumeric(f.Tag, f.Value); err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(string(f.Value), 10, 64)
	if err != nil {
		return 0, stepcode.New(stepcode.InvalidFldValue, "tag %d: %v", f.Tag, err)
	}
	return n, nil
}

// String returns the field's value as a freshly allocated string (the one
// copy point in this package — call only once the caller intends to retain
// the value past the lifetime of the decode buffer).
func (f Field) String() string {
	return string(f.Value)
}

func checkNumeric(tag constants.Tag, v []byte) error {
	if len(v) == 0 {
		return stepcode.New(stepcode.InvalidFldValue, "tag %d: empty numeric value", tag)
	}
	if len(v) > 1 && v[0] == '0' {
		return stepcode.New(stepcode.InvalidFldValue, "tag %d: leading zero", tag)
	}
	for _, b := range v {
		if b < '0' || b > '9' {
			return stepcode.New(stepcode.InvalidFldValue, "tag %d: non-digit byte %q", tag, b)
		}
	}
	return nil
}

// appendTag writes "<tag>=" to buf, failing if it would overflow.
func appendTag(buf []byte, offset int, tag constants.Tag) (int, error) {
	s := strconv.FormatUint(uint64(tag), 10)
	need := len(s) + 1
	if offset+need > len(buf) {
		return 0, stepcode.New(stepcode.BufferOverflow, "tag %d: buffer full", tag)
	}
	offset += copy(buf[offset:], s)
	buf[offset] = '='
	return offset + 1, nil
}

func appendTrailer(buf []byte, offset int) (int, error) {
	if offset+1 > len(buf) {
		return 0, stepcode.New(stepcode.BufferOverflow, "buffer full")
	}
	buf[offset] = SOH
	return offset + 1, nil
}

// AddInt64Field encodes a signed integer field.
func AddInt64Field(tag constants.Tag, value int64, buf []byte, offset int) (int, error) {
	offset, err := appendTag(buf, offset, tag)
	if err != nil {
		return 0, err
	}
	s := strconv.FormatInt(value, 10)
	if offset+len(s) > len(buf) {
		return 0, stepcode.New(stepcode.BufferOverflow, "tag %d: buffer full", tag)
	}
	offset += copy(buf[offset:], s)
	return appendTrailer(buf, offset)
}

// AddUint64Field encodes an unsigned integer field.
func AddUint64Field(tag constants.Tag, value uint64, buf []byte, offset int) (int, error) {
	offset, err := appendTag(buf, offset, tag)
	if err != nil {
		return 0, err
	}
	s := strconv.FormatUint(value, 10)
	if offset+len(s) > len(buf) {
		return 0, stepcode.New(stepcode.BufferOverflow, "tag %d: buffer full", tag)
	}
	offset += copy(buf[offset:], s)
	return appendTrailer(buf, offset)
}

// AddStringField encodes a text field verbatim (no escaping: STEP text
// values are never permitted to carry SOH).
func AddStringField(tag constants.Tag, value string, buf []byte, offset int) (int, error) {
	offset, err := appendTag(buf, offset, tag)
	if err != nil {
		return 0, err
	}
	if offset+len(value) > len(buf) {
		return 0, stepcode.New(stepcode.BufferOverflow, "tag %d: buffer full", tag)
	}
	offset += copy(buf[offset:], value)
	return appendTrailer(buf, offset)
}

// AddBinaryField encodes a length-prefixed binary field. The caller is
// responsible for writing the length under its own tag (95) beforehand;
// this only writes the raw bytes under tag 96 followed by SOH.
func AddBinaryField(tag constants.Tag, value []byte, buf []byte, offset int) (int, error) {
	offset, err := appendTag(buf, offset, tag)
	if err != nil {
		return 0, err
	}
	if offset+len(value) > len(buf) {
		return 0, stepcode.New(stepcode.BufferOverflow, "tag %d: buffer full", tag)
	}
	offset += copy(buf[offset:], value)
	return appendTrailer(buf, offset)
}

// Decode reads one text-form field — tag=value ending at the next SOH —
// starting at buf[offset]. It returns the field, the offset just past the
// consumed SOH, and an error. Returns stepcode.StreamNotEnough if buf does
// not contain a complete field yet (the caller's NEED_MORE signal).
func Decode(buf []byte, offset int) (Field, int, error) {
	tag, pos, err := decodeTag(buf, offset)
	if err != nil {
		return Field{}, 0, err
	}
	sohPos := indexSOH(buf, pos)
	if sohPos < 0 {
		return Field{}, 0, stepcode.New(stepcode.StreamNotEnough, "tag %d: value not terminated", tag)
	}
	return Field{Tag: tag, Value: buf[pos:sohPos]}, sohPos + 1, nil
}

// DecodeBinary reads one binary-form field of exactly valueLen bytes,
// requiring the byte at the end of the value to be SOH.
func DecodeBinary(buf []byte, offset int, valueLen int) (Field, int, error) {
	tag, pos, err := decodeTag(buf, offset)
	if err != nil {
		return Field{}, 0, err
	}
	end := pos + valueLen
	if end+1 > len(buf) {
		return Field{}, 0, stepcode.New(stepcode.StreamNotEnough, "tag %d: binary value truncated", tag)
	}
	if buf[end] != SOH {
		return Field{}, 0, stepcode.New(stepcode.InvalidFldFormat, "tag %d: missing SOH after binary value", tag)
	}
	return Field{Tag: tag, Value: buf[pos:end]}, end + 1, nil
}

// decodeTag parses the "<digits>=" prefix of a field, enforcing that the
// first digit is non-zero unless the tag is the single digit "0" itself
// (no valid STEP tag is 0, so in practice this just rejects leading zeros
// on every real tag).
func decodeTag(buf []byte, offset int) (constants.Tag, int, error) {
	eq := indexByte(buf, offset, '=')
	if eq < 0 {
		for _, b := range buf[offset:] {
			if b < '0' || b > '9' {
				return 0, 0, stepcode.New(stepcode.InvalidTag, "non-digit byte in tag")
			}
		}
		return 0, 0, stepcode.New(stepcode.StreamNotEnough, "tag not terminated")
	}
	digits := buf[offset:eq]
	if len(digits) == 0 {
		return 0, 0, stepcode.New(stepcode.InvalidTag, "empty tag")
	}
	if len(digits) > 1 && digits[0] == '0' {
		return 0, 0, stepcode.New(stepcode.InvalidTag, "leading zero in tag")
	}
	var n uint64
	for _, b := range digits {
		if b < '0' || b > '9' {
			return 0, 0, stepcode.New(stepcode.InvalidTag, "non-digit byte in tag")
		}
		n = n*10 + uint64(b-'0')
	}
	return constants.Tag(n), eq + 1, nil
}

func indexSOH(buf []byte, from int) int {
	return indexByte(buf, from, SOH)
}

func indexByte(buf []byte, from int, c byte) int {
	for i := from; i < len(buf); i++ {
		if buf[i] == c {
			return i
		}
	}
	return -1
}

// Checksum sums every byte of buf modulo 256 and renders it as a zero
// padded 3-digit decimal, per §4.2's "10=NNN" trailer rule.
func Checksum(buf []byte) string {
	var sum byte
	for _, b := range buf {
		sum += b
	}
	return pad3(int(sum))
}

func pad3(n int) string {
	const digits = "0123456789"
	return string([]byte{digits[n/100%10], digits[n/10%10], digits[n%10]})
}
