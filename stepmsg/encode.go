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

package stepmsg

import (
	"github.com/SSEDev/OrientalExpress/constants"
	"github.com/SSEDev/OrientalExpress/stepcode"
	"github.com/SSEDev/OrientalExpress/wire"
)

// yn renders a bool as the FIX "Y"/"N" character.
func yn(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

// Encode writes msg into buf in the canonical order §4.2 specifies: the
// body is built into a scratch area first so bodyLen is known before field
// 9 is written, matching the source's two-pass encode.
func Encode(msg Message, buf []byte) (int, error) {
	var scratch [constants.MaxMsgLen]byte
	bodyLen, err := encodeBody(msg, scratch[:])
	if err != nil {
		return 0, err
	}
	body := scratch[:bodyLen]

	pos := 0
	pos, err = wire.AddStringField(constants.TagBeginString, constants.FixBeginString, buf, pos)
	if err != nil {
		return 0, err
	}
	pos, err = wire.AddInt64Field(constants.TagBodyLength, int64(bodyLen), buf, pos)
	if err != nil {
		return 0, err
	}
	if pos+bodyLen > len(buf) {
		return 0, stepcode.New(stepcode.BufferOverflow, "encode: buffer too small for body")
	}
	copy(buf[pos:], body)
	pos += bodyLen

	checksum := wire.Checksum(buf[:pos])
	return wire.AddStringField(constants.TagCheckSum, checksum, buf, pos)
}

// encodeBody writes tag 35 plus the remaining header fields in fixed order
// (35, 49, 56, 34, 43?, 97?, 52, 347), then the body in its per-type
// canonical order.
func encodeBody(msg Message, buf []byte) (int, error) {
	pos := 0
	pos, err := wire.AddStringField(constants.TagMsgType, msg.Header.MsgType, buf, pos)
	if err != nil {
		return 0, err
	}
	pos, err = wire.AddStringField(constants.TagSenderCompID, msg.Header.SenderCompID, buf, pos)
	if err != nil {
		return 0, err
	}
	pos, err = wire.AddStringField(constants.TagTargetCompID, msg.Header.TargetCompID, buf, pos)
	if err != nil {
		return 0, err
	}
	pos, err = wire.AddInt64Field(constants.TagMsgSeqNum, msg.Header.MsgSeqNum, buf, pos)
	if err != nil {
		return 0, err
	}
	if msg.Header.PossDupSet {
		pos, err = wire.AddStringField(constants.TagPossDupFlag, yn(msg.Header.PossDupFlag), buf, pos)
		if err != nil {
			return 0, err
		}
	}
	if msg.Header.PossResendSet {
		pos, err = wire.AddStringField(constants.TagPossResend, yn(msg.Header.PossResend), buf, pos)
		if err != nil {
			return 0, err
		}
	}
	pos, err = wire.AddStringField(constants.TagSendingTime, msg.Header.SendingTime, buf, pos)
	if err != nil {
		return 0, err
	}
	pos, err = wire.AddStringField(constants.TagMsgEncoding, msg.Header.MsgEncoding, buf, pos)
	if err != nil {
		return 0, err
	}

	switch msg.Header.MsgType {
	case constants.MsgTypeLogon:
		return encodeLogon(msg.Logon, buf, pos)
	case constants.MsgTypeLogout:
		return encodeLogout(msg.Logout, buf, pos)
	case constants.MsgTypeHeartbeat:
		return encodeHeartbeat(msg.Heartbeat, buf, pos)
	case constants.MsgTypeMDRequest:
		return encodeMDRequest(msg.MDRequest, buf, pos)
	case constants.MsgTypeMDSnapshot:
		return encodeMDSnapshot(msg.MDSnapshot, buf, pos)
	case constants.MsgTypeTradingStatus:
		return encodeTradingStatus(msg.TradingStatus, buf, pos)
	default:
		return 0, stepcode.New(stepcode.InvalidMsgType, "unknown MsgType %q", msg.Header.MsgType)
	}
}

// encodeLogon follows §4.2's canonical order: 98, 108, 141?, 789?, 553,
// 554?, 1137, 1407?, 1408?.
func encodeLogon(b *Logon, buf []byte, pos int) (int, error) {
	pos, err := wire.AddInt64Field(constants.TagEncryptMethod, b.EncryptMethod, buf, pos)
	if err != nil {
		return 0, err
	}
	pos, err = wire.AddInt64Field(constants.TagHeartBtInt, b.HeartBtInt, buf, pos)
	if err != nil {
		return 0, err
	}
	if b.ResetSeqNumFlagSet {
		pos, err = wire.AddStringField(constants.TagResetSeqNumFlag, string(b.ResetSeqNumFlag), buf, pos)
		if err != nil {
			return 0, err
		}
	}
	if b.NextExpectedMsgSeqSet {
		pos, err = wire.AddInt64Field(constants.TagNextExpectedMsgSeqNum, b.NextExpectedMsgSeqNum, buf, pos)
		if err != nil {
			return 0, err
		}
	}
	pos, err = wire.AddStringField(constants.TagUsername, b.Username, buf, pos)
	if err != nil {
		return 0, err
	}
	if b.PasswordSet {
		pos, err = wire.AddStringField(constants.TagPassword, b.Password, buf, pos)
		if err != nil {
			return 0, err
		}
	}
	pos, err = wire.AddStringField(constants.TagDefaultApplVerID, b.DefaultApplVerID, buf, pos)
	if err != nil {
		return 0, err
	}
	if b.DefaultApplExtIDSet {
		pos, err = wire.AddStringField(constants.TagDefaultApplExtID, b.DefaultApplExtID, buf, pos)
		if err != nil {
			return 0, err
		}
	}
	if b.DefaultCstmApplVerSet {
		pos, err = wire.AddStringField(constants.TagDefaultCstmApplVerID, b.DefaultCstmApplVerID, buf, pos)
		if err != nil {
			return 0, err
		}
	}
	return pos, nil
}

// encodeLogout follows §4.2's order: 1409?, 58?.
func encodeLogout(b *Logout, buf []byte, pos int) (int, error) {
	pos, err := pos, error(nil)
	if b.SessionStatusSet {
		pos, err = wire.AddInt64Field(constants.TagSessionStatus, b.SessionStatus, buf, pos)
		if err != nil {
			return 0, err
		}
	}
	if b.TextSet {
		pos, err = wire.AddStringField(constants.TagText, b.Text, buf, pos)
		if err != nil {
			return 0, err
		}
	}
	return pos, nil
}

// encodeHeartbeat follows §4.2's order: 112?.
func encodeHeartbeat(b *Heartbeat, buf []byte, pos int) (int, error) {
	if !b.TestReqIDSet {
		return pos, nil
	}
	return wire.AddStringField(constants.TagTestReqID, b.TestReqID, buf, pos)
}

// encodeMDRequest follows §4.2's order: 167.
func encodeMDRequest(b *MDRequest, buf []byte, pos int) (int, error) {
	return wire.AddStringField(constants.TagSecurityType, b.SecurityType, buf, pos)
}

// encodeMDSnapshot follows §4.2's order: 167, 339, 1180, 1181, 75, 779?,
// 265, 5468, 95, 96.
func encodeMDSnapshot(b *MDSnapshot, buf []byte, pos int) (int, error) {
	pos, err := wire.AddStringField(constants.TagSecurityType, b.SecurityType, buf, pos)
	if err != nil {
		return 0, err
	}
	pos, err = wire.AddInt64Field(constants.TagTradSesMode, b.TradSesMode, buf, pos)
	if err != nil {
		return 0, err
	}
	pos, err = wire.AddInt64Field(constants.TagApplID, b.ApplID, buf, pos)
	if err != nil {
		return 0, err
	}
	pos, err = wire.AddInt64Field(constants.TagApplSeqNum, b.ApplSeqNum, buf, pos)
	if err != nil {
		return 0, err
	}
	pos, err = wire.AddStringField(constants.TagTradeDate, b.TradeDate, buf, pos)
	if err != nil {
		return 0, err
	}
	if b.LastFragSet {
		pos, err = wire.AddStringField(constants.TagLastFragment, yn(b.LastFragment), buf, pos)
		if err != nil {
			return 0, err
		}
	}
	pos, err = wire.AddInt64Field(constants.TagMdUpdateType, b.MdUpdateType, buf, pos)
	if err != nil {
		return 0, err
	}
	pos, err = wire.AddInt64Field(constants.TagMdCount, b.MdCount, buf, pos)
	if err != nil {
		return 0, err
	}
	pos, err = wire.AddInt64Field(constants.TagMdDataLen, int64(len(b.MdData)), buf, pos)
	if err != nil {
		return 0, err
	}
	return wire.AddBinaryField(constants.TagMdData, b.MdData, buf, pos)
}

// encodeTradingStatus follows §4.2's order: 167, 339, 336, 393.
func encodeTradingStatus(b *TradingStatus, buf []byte, pos int) (int, error) {
	pos, err := wire.AddStringField(constants.TagSecurityType, b.SecurityType, buf, pos)
	if err != nil {
		return 0, err
	}
	pos, err = wire.AddInt64Field(constants.TagTradSesMode, b.TradSesMode, buf, pos)
	if err != nil {
		return 0, err
	}
	pos, err = wire.AddStringField(constants.TagTradingSessionID, b.TradingSessionID, buf, pos)
	if err != nil {
		return 0, err
	}
	return wire.AddInt64Field(constants.TagTotNoRelatedSym, b.TotNoRelatedSym, buf, pos)
}
