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
)

var knownMsgTypes = map[string]bool{
	constants.MsgTypeHeartbeat:     true,
	constants.MsgTypeLogout:        true,
	constants.MsgTypeLogon:         true,
	constants.MsgTypeMDRequest:     true,
	constants.MsgTypeMDSnapshot:    true,
	constants.MsgTypeTradingStatus: true,
}

func fieldNotFound(tag constants.Tag) error {
	return stepcode.New(stepcode.FldNotFound, "tag %d not present", tag)
}

// Direction distinguishes a message this library is about to send from one
// it just received, since a handful of §4.3 checks (the Logon fields that
// only make sense on our own outbound request) don't apply to the other
// direction.
type Direction int

const (
	DirectionRequest Direction = iota
	DirectionReceived
)

func (d Direction) String() string {
	switch d {
	case DirectionRequest:
		return "Request"
	case DirectionReceived:
		return "Received"
	default:
		return "Unknown"
	}
}

// Validate runs the §4.3 semantic checks: presence and constant-value
// rules the decoder's structural pass does not enforce. dir is
// DirectionRequest for a message about to be encoded and sent, and
// DirectionReceived for one just decoded off the wire.
func Validate(msg Message, dir Direction) error {
	if err := validateHeader(msg.Header); err != nil {
		return err
	}
	switch {
	case msg.Logon != nil:
		return validateLogon(*msg.Logon, dir)
	case msg.MDSnapshot != nil:
		return validateMDSnapshot(*msg.MDSnapshot)
	case msg.TradingStatus != nil:
		return validateTradingStatus(*msg.TradingStatus)
	}
	return nil
}

func validateHeader(h Header) error {
	if !knownMsgTypes[h.MsgType] {
		return stepcode.New(stepcode.InvalidMsgType, "unknown MsgType %q", h.MsgType)
	}
	if h.SenderCompID == "" {
		return fieldNotFound(constants.TagSenderCompID)
	}
	if h.TargetCompID == "" {
		return fieldNotFound(constants.TagTargetCompID)
	}
	if h.MsgSeqNum == 0 {
		return fieldNotFound(constants.TagMsgSeqNum)
	}
	if h.SendingTime == "" {
		return fieldNotFound(constants.TagSendingTime)
	}
	if h.MsgEncoding != constants.MsgEncoding {
		return stepcode.New(stepcode.InvalidFldValue, "tag 347: msgEncoding must be %q", constants.MsgEncoding)
	}
	return nil
}

// validateLogon enforces the resetSeqNumFlag/nextExpectedMsgSeqNum/password/
// defaultApplVerID rules only for dir == DirectionRequest: a Logon the
// library itself sends must carry these, but a received Logon response
// naturally omits them.
func validateLogon(b Logon, dir Direction) error {
	if dir != DirectionRequest {
		return nil
	}
	if b.ResetSeqNumFlag != 'Y' {
		return stepcode.New(stepcode.InvalidFldValue, "tag 141: resetSeqNumFlag must be Y")
	}
	if !b.NextExpectedMsgSeqSet {
		return fieldNotFound(constants.TagNextExpectedMsgSeqNum)
	}
	if !b.PasswordSet || b.Password == "" {
		return fieldNotFound(constants.TagPassword)
	}
	if b.DefaultApplVerID != constants.DefaultApplVer {
		return stepcode.New(stepcode.InvalidFldValue, "tag 1137: defaultApplVerID must be %q", constants.DefaultApplVer)
	}
	return nil
}

func validateMDSnapshot(b MDSnapshot) error {
	if b.SecurityType == "" {
		return fieldNotFound(constants.TagSecurityType)
	}
	if b.TradSesMode == 0 {
		return fieldNotFound(constants.TagTradSesMode)
	}
	if b.ApplID == 0 {
		return fieldNotFound(constants.TagApplID)
	}
	if b.ApplSeqNum == 0 {
		return fieldNotFound(constants.TagApplSeqNum)
	}
	if b.TradeDate == "" {
		return fieldNotFound(constants.TagTradeDate)
	}
	if b.MdUpdateType == 0 {
		return fieldNotFound(constants.TagMdUpdateType)
	}
	if b.MdCount == 0 {
		return fieldNotFound(constants.TagMdCount)
	}
	if b.MdDataLen == 0 {
		return fieldNotFound(constants.TagMdDataLen)
	}
	return nil
}

func validateTradingStatus(b TradingStatus) error {
	if b.SecurityType == "" {
		return fieldNotFound(constants.TagSecurityType)
	}
	if b.TradSesMode == 0 {
		return fieldNotFound(constants.TagTradSesMode)
	}
	if b.TradingSessionID == "" {
		return fieldNotFound(constants.TagTradingSessionID)
	}
	if b.TotNoRelatedSym == 0 {
		return fieldNotFound(constants.TagTotNoRelatedSym)
	}
	return nil
}
