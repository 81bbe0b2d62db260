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

package builder

import (
	"testing"

	"github.com/SSEDev/OrientalExpress/constants"
	"github.com/SSEDev/OrientalExpress/stepmsg"
)

func TestLogonBuildsResetSeqNumLogon(t *testing.T) {
	msg := Logon(1, "alice", "secret", 30)

	if msg.Header.MsgType != constants.MsgTypeLogon || msg.Header.MsgSeqNum != 1 {
		t.Fatalf("header = %+v", msg.Header)
	}
	if msg.Logon == nil {
		t.Fatal("Logon body is nil")
	}
	if msg.Logon.HeartBtInt != 30 || msg.Logon.Username != "alice" || msg.Logon.Password != "secret" {
		t.Fatalf("body = %+v", msg.Logon)
	}
	if !msg.Logon.ResetSeqNumFlagSet || msg.Logon.ResetSeqNumFlag != 'Y' {
		t.Fatalf("resetSeqNumFlag not set to Y: %+v", msg.Logon)
	}
	if !msg.Logon.NextExpectedMsgSeqSet || msg.Logon.NextExpectedMsgSeqNum != 1 {
		t.Fatalf("nextExpectedMsgSeqNum not 1: %+v", msg.Logon)
	}
	if err := stepmsg.Validate(msg, stepmsg.DirectionRequest); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLogoutBuildsOptionalText(t *testing.T) {
	withReason := Logout(2, "client requested")
	if !withReason.Logout.TextSet || withReason.Logout.Text != "client requested" {
		t.Fatalf("body = %+v", withReason.Logout)
	}

	noReason := Logout(3, "")
	if noReason.Logout.TextSet {
		t.Fatalf("TextSet should be false for an empty reason: %+v", noReason.Logout)
	}
}

func TestHeartbeatHasNoOptionalFields(t *testing.T) {
	msg := Heartbeat(4)
	if msg.Header.MsgType != constants.MsgTypeHeartbeat {
		t.Fatalf("MsgType = %s", msg.Header.MsgType)
	}
	if msg.Heartbeat.TestReqIDSet {
		t.Fatalf("unsolicited heartbeat should not set TestReqID: %+v", msg.Heartbeat)
	}
}

func TestMDRequestCarriesSecurityType(t *testing.T) {
	msg := MDRequest(5, constants.SecurityTypeSTK)
	if msg.Header.MsgType != constants.MsgTypeMDRequest {
		t.Fatalf("MsgType = %s", msg.Header.MsgType)
	}
	if msg.MDRequest.SecurityType != constants.SecurityTypeSTK {
		t.Fatalf("SecurityType = %s", msg.MDRequest.SecurityType)
	}
}

func TestBuiltMessagesRoundTripThroughEncode(t *testing.T) {
	var buf [512]byte
	msg := Logon(1, "alice", "secret", 30)
	n, err := stepmsg.Encode(msg, buf[:])
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, used, err := stepmsg.Decode(buf[:n])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if used != n {
		t.Fatalf("used = %d, want %d", used, n)
	}
	if decoded.Logon == nil || decoded.Logon.Username != "alice" {
		t.Fatalf("decoded = %+v", decoded.Logon)
	}
}
