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

// Package stepmsg is the STEP message codec: full-message framing on top of
// wire's field codec, per-MsgType body structs, canonical field ordering on
// encode, and the post-decode/pre-encode semantic validator.
package stepmsg

// Header carries the fields common to every STEP message.
type Header struct {
	MsgType       string
	SenderCompID  string
	TargetCompID  string
	MsgSeqNum     int64
	SendingTime   string
	MsgEncoding   string
	PossDupFlag   bool
	PossDupSet    bool
	PossResend    bool
	PossResendSet bool
}

// Logon is the body of MsgType 'A'.
type Logon struct {
	EncryptMethod          int64
	HeartBtInt             int64
	ResetSeqNumFlag        byte
	ResetSeqNumFlagSet     bool
	NextExpectedMsgSeqNum  int64
	NextExpectedMsgSeqSet  bool
	Username               string
	Password               string
	PasswordSet            bool
	DefaultApplVerID       string
	DefaultApplExtID       string
	DefaultApplExtIDSet    bool
	DefaultCstmApplVerID   string
	DefaultCstmApplVerSet  bool
}

// Logout is the body of MsgType '5'.
type Logout struct {
	SessionStatus    int64
	SessionStatusSet bool
	Text             string
	TextSet          bool
}

// Heartbeat is the body of MsgType '0'.
type Heartbeat struct {
	TestReqID    string
	TestReqIDSet bool
}

// MDRequest is the body of MsgType 'V'.
type MDRequest struct {
	SecurityType string
}

// MDSnapshot is the body of MsgType 'W'.
type MDSnapshot struct {
	SecurityType  string
	TradSesMode   int64
	ApplID        int64
	ApplSeqNum    int64
	TradeDate     string
	LastFragment  bool
	LastFragSet   bool
	MdUpdateType  int64
	MdCount       int64
	MdDataLen     int64
	MdData        []byte
}

// TradingStatus is the body of MsgType 'h'.
type TradingStatus struct {
	SecurityType      string
	TradSesMode       int64
	TradingSessionID  string
	TotNoRelatedSym   int64
}

// Message pairs a Header with exactly one of the typed bodies below,
// selected by Header.MsgType. Only one body field is populated per
// decoded or to-be-encoded message.
type Message struct {
	Header        Header
	Logon         *Logon
	Logout        *Logout
	Heartbeat     *Heartbeat
	MDRequest     *MDRequest
	MDSnapshot    *MDSnapshot
	TradingStatus *TradingStatus
}
