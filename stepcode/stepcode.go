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

// Package stepcode is the error taxonomy for the STEP client: one Code per
// failure mode the library can report, grouped the way the originating EPS_*
// (lifecycle/parameter/operational/data-semantics) and STEP_* (codec)
// namespaces were grouped. Every public operation returns a *stepcode.Error
// on failure instead of a bare error string, so callers can switch on Code.
package stepcode

import (
	"errors"
	"fmt"
)

// Code is a closed enum of the failure modes surfaced by this library.
// The zero value, OK, is the success sentinel callbacks carry alongside a
// successful response (§6 "Callback surface": every Rsp callback takes a
// code, OK on success).
type Code int

// OK is the zero Code: success, not a failure mode.
const OK Code = 0

const (
	// --- Lifecycle (formerly EPS_* 0x2001_0005-0016, 0x2001_0011) ---
	DuplicateInited Code = iota + 1
	Uninited
	DuplicateRegistered
	InvalidHid
	HidCountBeyondLimit
	DuplicateConnect
	DuplicateSubscribed

	// --- Parameter / state (EPS_* 0x2001_0004, 0007, 000c, 0012) ---
	InvalidParm
	InvalidConnMode
	InvalidMktType
	InvalidAddress
	InvalidOperation

	// --- Operational (EPS_* 0x2001_0001-0003, 0013-0015) ---
	OperSystemError
	SocketError
	SocketTimeout
	LoginFailed
	SubMarketDataFailed
	CheckKeepaliveTimeout

	// --- Data semantics (EPS_* 0x2001_000e-0010) ---
	MktTypeUnsubscribed
	MktDataBackflow
	MktStatusUnchanged
	DataSourceChanged

	// --- Codec (STEP_* 0x2002_0001-000a, plus the framing additions) ---
	InvalidFldValue
	BufferOverflow
	InvalidFldFormat
	InvalidTag
	InvalidMsgType
	FldNotFound
	StreamNotEnough
	InvalidMsgFormat
	ChecksumFailed
	UnexpectedTag
	UnexpectedMsgType
)

var names = map[Code]string{
	OK:                    "OK",
	DuplicateInited:       "DUPLICATE_INITED",
	Uninited:              "UNINITED",
	DuplicateRegistered:   "DUPLICATE_REGISTERED",
	InvalidHid:            "INVALID_HID",
	HidCountBeyondLimit:   "HID_COUNT_BEYOND_LIMIT",
	DuplicateConnect:      "DUPLICATE_CONNECT",
	DuplicateSubscribed:   "DUPLICATE_SUBSCRIBED", // source: MKTTYPE_DUPSUBSCRIBED
	InvalidParm:           "INVALID_PARM",
	InvalidConnMode:       "INVALID_CONNMODE",
	InvalidMktType:        "INVALID_MKTTYPE",
	InvalidAddress:        "INVALID_ADDRESS",
	InvalidOperation:      "INVALID_OPERATION",
	OperSystemError:       "OPERSYSTEM_ERROR",
	SocketError:           "SOCKET_ERROR",
	SocketTimeout:         "SOCKET_TIMEOUT",
	LoginFailed:           "LOGIN_FAILED",
	SubMarketDataFailed:   "SUBMARKETDATA_FAILED",
	CheckKeepaliveTimeout: "CHECK_KEEPALIVE_TIMEOUT",
	MktTypeUnsubscribed:   "MKTTYPE_UNSUBSCRIBED",
	MktDataBackflow:       "MKTDATA_BACKFLOW",
	MktStatusUnchanged:    "MKTSTATUS_UNCHANGED",
	DataSourceChanged:     "DATASOURCE_CHANGED",
	InvalidFldValue:       "INVALID_FLDVALUE",
	BufferOverflow:        "BUFFER_OVERFLOW",
	InvalidFldFormat:      "INVALID_FLDFORMAT",
	InvalidTag:            "INVALID_TAG",
	InvalidMsgType:        "INVALID_MSGTYPE",
	FldNotFound:           "FLD_NOTFOUND",
	StreamNotEnough:       "STREAM_NOT_ENOUGH",
	InvalidMsgFormat:      "INVALID_MSGFORMAT",
	ChecksumFailed:        "CHECKSUM_FAILED",
	UnexpectedTag:         "UNEXPECTED_TAG",
	UnexpectedMsgType:     "UNEXPECTED_MSGTYPE",
}

// String renders the stable symbolic name (the source's ERCD_* suffix).
func (c Code) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return fmt.Sprintf("UNKNOWN_CODE(%d)", int(c))
}

// Error pairs a Code with human-readable detail, mirroring the source's
// {errCode, errDscr} pair threaded through a thread-local in the original.
type Error struct {
	Code   Code
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// New builds an *Error with a formatted detail message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// Is reports whether err (or anything it wraps) carries the given Code.
func Is(err error, code Code) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == code
}
