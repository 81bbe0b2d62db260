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

// TrailerLen is the fixed length of "10=NNN<SOH>".
const trailerLen = constants.TrailerLen

// Decode reads one full message from buf starting at offset 0. It returns
// the decoded Message and the number of bytes consumed, or
// stepcode.StreamNotEnough if buf does not yet hold a complete message —
// the caller's NEED_MORE signal (§4.2: "return... a sentinel NEED_MORE").
//
// HOT PATH: called once per message on every socket read; the body loop
// below is the busiest part of the receive path.
func Decode(buf []byte) (Message, int, error) {
	pos := 0

	f, pos, err := wire.Decode(buf, pos)
	if err != nil {
		return Message{}, 0, err
	}
	if f.Tag != constants.TagBeginString {
		return Message{}, 0, stepcode.New(stepcode.UnexpectedTag, "expected tag 8, got %d", f.Tag)
	}
	if f.String() != constants.FixBeginString {
		return Message{}, 0, stepcode.New(stepcode.InvalidFldValue, "tag 8: unexpected BeginString %q", f.String())
	}

	f, pos, err = wire.Decode(buf, pos)
	if err != nil {
		return Message{}, 0, err
	}
	if f.Tag != constants.TagBodyLength {
		return Message{}, 0, stepcode.New(stepcode.UnexpectedTag, "expected tag 9, got %d", f.Tag)
	}
	bodyLen, err := f.Int64()
	if err != nil {
		return Message{}, 0, err
	}
	if bodyLen > constants.MaxBodyLen {
		return Message{}, 0, stepcode.New(stepcode.InvalidFldValue, "tag 9: bodyLen %d exceeds %d", bodyLen, constants.MaxBodyLen)
	}

	bodyStart := pos
	need := bodyStart + int(bodyLen) + trailerLen
	if len(buf) < need {
		return Message{}, 0, stepcode.New(stepcode.StreamNotEnough, "need %d bytes, have %d", need, len(buf))
	}
	bodyEnd := bodyStart + int(bodyLen)

	csField, csPos, err := wire.Decode(buf, bodyEnd)
	if err != nil {
		return Message{}, 0, err
	}
	if csField.Tag != constants.TagCheckSum {
		return Message{}, 0, stepcode.New(stepcode.UnexpectedTag, "expected tag 10, got %d", csField.Tag)
	}
	if len(csField.Value) != 3 {
		return Message{}, 0, stepcode.New(stepcode.InvalidFldFormat, "tag 10: checksum must be 3 digits, got %d", len(csField.Value))
	}
	for _, b := range csField.Value {
		if b < '0' || b > '9' {
			return Message{}, 0, stepcode.New(stepcode.InvalidFldFormat, "tag 10: non-digit checksum byte")
		}
	}
	want := wire.Checksum(buf[:bodyEnd])
	if csField.String() != want {
		return Message{}, 0, stepcode.New(stepcode.ChecksumFailed, "checksum mismatch: got %s, want %s", csField.String(), want)
	}

	var msg Message
	bodyPos := bodyStart
	f, bodyPos, err = wire.Decode(buf, bodyPos)
	if err != nil {
		return Message{}, 0, err
	}
	if f.Tag != constants.TagMsgType {
		return Message{}, 0, stepcode.New(stepcode.UnexpectedTag, "expected tag 35, got %d", f.Tag)
	}
	msg.Header.MsgType = f.String()

	if err := decodeBody(&msg, buf, bodyPos, bodyEnd); err != nil {
		return Message{}, 0, err
	}

	return msg, csPos, nil
}

// decodeBody reads header fields (35 already consumed) and the body loop,
// dispatching per message type (§4.2 point 5/6): every known tag updates
// one header or body slot; unknown tags are a decode error in strict mode.
func decodeBody(msg *Message, buf []byte, pos, end int) error {
	switch msg.Header.MsgType {
	case constants.MsgTypeLogon:
		msg.Logon = &Logon{}
	case constants.MsgTypeLogout:
		msg.Logout = &Logout{}
	case constants.MsgTypeHeartbeat:
		msg.Heartbeat = &Heartbeat{}
	case constants.MsgTypeMDRequest:
		msg.MDRequest = &MDRequest{}
	case constants.MsgTypeMDSnapshot:
		msg.MDSnapshot = &MDSnapshot{}
	case constants.MsgTypeTradingStatus:
		msg.TradingStatus = &TradingStatus{}
	default:
		return stepcode.New(stepcode.InvalidMsgType, "unknown MsgType %q", msg.Header.MsgType)
	}

	for pos < end {
		f, next, err := wire.Decode(buf, pos)
		if err != nil {
			return err
		}
		pos = next

		switch f.Tag {
		case constants.TagSenderCompID:
			msg.Header.SenderCompID = f.String()
		case constants.TagTargetCompID:
			msg.Header.TargetCompID = f.String()
		case constants.TagMsgSeqNum:
			n, err := f.Int64()
			if err != nil {
				return err
			}
			msg.Header.MsgSeqNum = n
		case constants.TagPossDupFlag:
			msg.Header.PossDupFlag = f.String() == "Y"
			msg.Header.PossDupSet = true
		case constants.TagPossResend:
			msg.Header.PossResend = f.String() == "Y"
			msg.Header.PossResendSet = true
		case constants.TagSendingTime:
			msg.Header.SendingTime = f.String()
		case constants.TagMsgEncoding:
			msg.Header.MsgEncoding = f.String()
		default:
			var handled bool
			pos, handled, err = decodeBodyField(msg, f, buf, pos, end)
			if err != nil {
				return err
			}
			if !handled {
				return stepcode.New(stepcode.UnexpectedTag, "tag %d not valid for MsgType %q", f.Tag, msg.Header.MsgType)
			}
		}
	}
	return nil
}

// decodeBodyField handles the per-type tags that aren't part of the common
// header. It returns the possibly-advanced position (only tag 95 advances
// it further, to consume tag 96's binary-form value), whether the tag was
// recognized for the message's type, and an error.
func decodeBodyField(msg *Message, f wire.Field, buf []byte, pos, end int) (int, bool, error) {
	switch {
	case msg.Logon != nil:
		return pos, decodeLogonField(msg.Logon, f), nil
	case msg.Logout != nil:
		return pos, decodeLogoutField(msg.Logout, f), nil
	case msg.Heartbeat != nil:
		return pos, decodeHeartbeatField(msg.Heartbeat, f), nil
	case msg.MDRequest != nil:
		return pos, decodeMDRequestField(msg.MDRequest, f), nil
	case msg.MDSnapshot != nil:
		return decodeMDSnapshotField(msg.MDSnapshot, f, buf, pos, end)
	case msg.TradingStatus != nil:
		return pos, decodeTradingStatusField(msg.TradingStatus, f), nil
	}
	return pos, false, nil
}

func decodeLogonField(b *Logon, f wire.Field) bool {
	switch f.Tag {
	case constants.TagEncryptMethod:
		n, err := f.Int64()
		if err != nil {
			return false
		}
		b.EncryptMethod = n
	case constants.TagHeartBtInt:
		n, err := f.Int64()
		if err != nil {
			return false
		}
		b.HeartBtInt = n
	case constants.TagResetSeqNumFlag:
		if len(f.Value) != 1 {
			return false
		}
		b.ResetSeqNumFlag = f.Value[0]
		b.ResetSeqNumFlagSet = true
	case constants.TagNextExpectedMsgSeqNum:
		n, err := f.Int64()
		if err != nil {
			return false
		}
		b.NextExpectedMsgSeqNum = n
		b.NextExpectedMsgSeqSet = true
	case constants.TagUsername:
		b.Username = f.String()
	case constants.TagPassword:
		b.Password = f.String()
		b.PasswordSet = true
	case constants.TagDefaultApplVerID:
		b.DefaultApplVerID = f.String()
	case constants.TagDefaultApplExtID:
		b.DefaultApplExtID = f.String()
		b.DefaultApplExtIDSet = true
	case constants.TagDefaultCstmApplVerID:
		b.DefaultCstmApplVerID = f.String()
		b.DefaultCstmApplVerSet = true
	default:
		return false
	}
	return true
}

func decodeLogoutField(b *Logout, f wire.Field) bool {
	switch f.Tag {
	case constants.TagSessionStatus:
		n, err := f.Int64()
		if err != nil {
			return false
		}
		b.SessionStatus = n
		b.SessionStatusSet = true
	case constants.TagText:
		b.Text = f.String()
		b.TextSet = true
	default:
		return false
	}
	return true
}

func decodeHeartbeatField(b *Heartbeat, f wire.Field) bool {
	if f.Tag != constants.TagTestReqID {
		return false
	}
	b.TestReqID = f.String()
	b.TestReqIDSet = true
	return true
}

func decodeMDRequestField(b *MDRequest, f wire.Field) bool {
	if f.Tag != constants.TagSecurityType {
		return false
	}
	b.SecurityType = f.String()
	return true
}

func decodeTradingStatusField(b *TradingStatus, f wire.Field) bool {
	switch f.Tag {
	case constants.TagSecurityType:
		b.SecurityType = f.String()
	case constants.TagTradSesMode:
		n, err := f.Int64()
		if err != nil {
			return false
		}
		b.TradSesMode = n
	case constants.TagTradingSessionID:
		b.TradingSessionID = f.String()
	case constants.TagTotNoRelatedSym:
		n, err := f.Int64()
		if err != nil {
			return false
		}
		b.TotNoRelatedSym = n
	default:
		return false
	}
	return true
}

// decodeMDSnapshotField handles MDSnapshot's fields, including the
// tag-95/tag-96 binary pair: §4.2 requires 96 immediately follow 95, with
// 95's value gating a binary-form read of 96 rather than a text-form one.
func decodeMDSnapshotField(b *MDSnapshot, f wire.Field, buf []byte, pos, end int) (int, bool, error) {
	switch f.Tag {
	case constants.TagSecurityType:
		b.SecurityType = f.String()
	case constants.TagTradSesMode:
		n, err := f.Int64()
		if err != nil {
			return pos, false, err
		}
		b.TradSesMode = n
	case constants.TagApplID:
		n, err := f.Int64()
		if err != nil {
			return pos, false, err
		}
		b.ApplID = n
	case constants.TagApplSeqNum:
		n, err := f.Int64()
		if err != nil {
			return pos, false, err
		}
		b.ApplSeqNum = n
	case constants.TagTradeDate:
		b.TradeDate = f.String()
	case constants.TagLastFragment:
		b.LastFragment = f.String() == "Y"
		b.LastFragSet = true
	case constants.TagMdUpdateType:
		n, err := f.Int64()
		if err != nil {
			return pos, false, err
		}
		b.MdUpdateType = n
	case constants.TagMdCount:
		n, err := f.Int64()
		if err != nil {
			return pos, false, err
		}
		b.MdCount = n
	case constants.TagMdDataLen:
		n, err := f.Int64()
		if err != nil {
			return pos, false, err
		}
		b.MdDataLen = n
		dataField, next, err := wire.DecodeBinary(buf, pos, int(n))
		if err != nil {
			return pos, false, err
		}
		if dataField.Tag != constants.TagMdData {
			return pos, false, stepcode.New(stepcode.UnexpectedTag, "tag 95 must be followed by tag 96, got %d", dataField.Tag)
		}
		b.MdData = dataField.Value
		return next, true, nil
	default:
		return pos, false, nil
	}
	return pos, true, nil
}
