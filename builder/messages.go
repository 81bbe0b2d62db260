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

// Package builder assembles the outbound stepmsg.Message values the TCP
// driver sends: Logon, Logout, Heartbeat, and MDRequest. Each builder fills
// the common header (§4.6 "fill header... then the body") and the body in
// the canonical field order §4.2 specifies for its message type.
package builder

import (
	"time"

	"github.com/SSEDev/OrientalExpress/constants"
	"github.com/SSEDev/OrientalExpress/stepmsg"
)

func header(msgType string, seqNum int64) stepmsg.Header {
	return stepmsg.Header{
		MsgType:      msgType,
		SenderCompID: constants.SenderCompID,
		TargetCompID: constants.TargetCompID,
		MsgSeqNum:    seqNum,
		SendingTime:  time.Now().UTC().Format(constants.FixTimeFormat),
		MsgEncoding:  constants.MsgEncoding,
	}
}

// Logon builds the request-direction Logon §8.1 describes: resetSeqNumFlag
// 'Y', nextExpectedMsgSeqNum 1, and the fixed defaultApplVerID this client
// always advertises.
func Logon(seqNum int64, username, password string, heartbeatIntl int64) stepmsg.Message {
	return stepmsg.Message{
		Header: header(constants.MsgTypeLogon, seqNum),
		Logon: &stepmsg.Logon{
			EncryptMethod:         0,
			HeartBtInt:            heartbeatIntl,
			ResetSeqNumFlag:       'Y',
			ResetSeqNumFlagSet:    true,
			NextExpectedMsgSeqNum: 1,
			NextExpectedMsgSeqSet: true,
			Username:              username,
			Password:              password,
			PasswordSet:           true,
			DefaultApplVerID:      constants.DefaultApplVer,
		},
	}
}

// Logout builds a Logout carrying an optional free-text reason.
func Logout(seqNum int64, reason string) stepmsg.Message {
	return stepmsg.Message{
		Header: header(constants.MsgTypeLogout, seqNum),
		Logout: &stepmsg.Logout{
			Text:    reason,
			TextSet: reason != "",
		},
	}
}

// Heartbeat builds an unsolicited Heartbeat, sent when the commIdleTimes
// threshold fires (§4.6 "Keepalive").
func Heartbeat(seqNum int64) stepmsg.Message {
	return stepmsg.Message{
		Header:    header(constants.MsgTypeHeartbeat, seqNum),
		Heartbeat: &stepmsg.Heartbeat{},
	}
}

// MDRequest builds the single-field subscribe request for one concrete
// market's securityType (§4.2: MDRequest canonical order is just tag 167).
func MDRequest(seqNum int64, securityType string) stepmsg.Message {
	return stepmsg.Message{
		Header:    header(constants.MsgTypeMDRequest, seqNum),
		MDRequest: &stepmsg.MDRequest{SecurityType: securityType},
	}
}
