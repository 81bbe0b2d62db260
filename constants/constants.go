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

// Package constants holds the STEP wire-protocol constants: tag numbers,
// MsgType values, and the fixed-width framing parameters. Nothing here is
// specific to one market-data venue; venue-specific order-entry tag sets
// belong to a different package.
package constants

// Tag identifies a STEP/FIX tag number.
type Tag uint32

// --- Message Types (tag 35) ---
const (
	MsgTypeHeartbeat     = "0" // Heartbeat
	MsgTypeLogout        = "5" // Logout
	MsgTypeLogon         = "A" // Logon
	MsgTypeMDRequest     = "V" // Market Data Request
	MsgTypeMDSnapshot    = "W" // Market Data Snapshot/Full Refresh
	MsgTypeTradingStatus = "h" // Trading Status
)

// --- Protocol Constants ---
const (
	FixBeginString = "FIXT.1.1"
	FixTimeFormat  = "20060102-15:04:05.000"
	MsgEncoding    = "GBK"
	DefaultApplVer = "9"

	// SenderCompID/TargetCompID are fixed per §4.6 ("fill header
	// (senderCompID, targetCompID = constants...)") — this client always
	// identifies itself and the venue the same way, regardless of hid.
	SenderCompID = "OEPS.1.1"
	TargetCompID = "EzEI.1.1"

	// MaxBodyLen is the largest permitted value of tag 9 (BodyLength).
	MaxBodyLen = 4096

	// TrailerLen is the fixed length of "10=NNN<SOH>".
	TrailerLen = 7

	// MaxMsgLen bounds a single encoded message (header + body + trailer).
	MaxMsgLen = 4096 + 64
)

// --- Header Tags ---
const (
	TagBeginString  Tag = 8
	TagBodyLength   Tag = 9
	TagMsgType      Tag = 35
	TagSenderCompID Tag = 49
	TagTargetCompID Tag = 56
	TagMsgSeqNum    Tag = 34
	TagPossDupFlag  Tag = 43
	TagPossResend   Tag = 97
	TagSendingTime  Tag = 52
	TagMsgEncoding  Tag = 347
	TagCheckSum     Tag = 10
)

// --- Logon (A) Tags ---
const (
	TagEncryptMethod         Tag = 98
	TagHeartBtInt            Tag = 108
	TagResetSeqNumFlag       Tag = 141
	TagNextExpectedMsgSeqNum Tag = 789
	TagUsername              Tag = 553
	TagPassword              Tag = 554
	TagDefaultApplVerID      Tag = 1137
	TagDefaultApplExtID      Tag = 1407
	TagDefaultCstmApplVerID  Tag = 1408
)

// --- Logout (5) Tags ---
const (
	TagSessionStatus Tag = 1409
	TagText          Tag = 58
)

// --- Heartbeat (0) Tags ---
const (
	TagTestReqID Tag = 112
)

// --- Market Data Tags ---
const (
	TagSecurityType   Tag = 167
	TagTradSesMode Tag = 339
	TagApplID      Tag = 1180
	TagApplSeqNum  Tag = 1181
	TagTradeDate   Tag = 75
	// TagLastFragment is MDSnapshot's optional tag 779, emitted only when set.
	TagLastFragment Tag = 779
	TagMdUpdateType Tag = 265
	TagMdCount      Tag = 5468
	TagMdDataLen    Tag = 95 // RawDataLength
	TagMdData       Tag = 96 // RawData

	TagTradingSessionID Tag = 336
	// TagTotNoRelatedSym is TradingStatus's required tag 393.
	TagTotNoRelatedSym Tag = 393
)

// --- Security Type (tag 167) values: the EpsMktType domain ---
const (
	SecurityTypeAll = "0"
	SecurityTypeSTK = "1"
	SecurityTypeDEV = "2"
)
