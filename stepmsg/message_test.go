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
	"bytes"
	"testing"

	"github.com/SSEDev/OrientalExpress/constants"
	"github.com/SSEDev/OrientalExpress/stepcode"
)

func sampleLogon() Message {
	return Message{
		Header: Header{
			MsgType:      constants.MsgTypeLogon,
			SenderCompID: "OEPS.1.1",
			TargetCompID: "EzEI.1.1",
			MsgSeqNum:    1,
			SendingTime:  "20140815-09:30:00",
			MsgEncoding:  constants.MsgEncoding,
		},
		Logon: &Logon{
			EncryptMethod:         0,
			HeartBtInt:            30,
			ResetSeqNumFlag:       'Y',
			ResetSeqNumFlagSet:    true,
			NextExpectedMsgSeqNum: 1,
			NextExpectedMsgSeqSet: true,
			Username:              "u",
			Password:              "p",
			PasswordSet:           true,
			DefaultApplVerID:      constants.DefaultApplVer,
		},
	}
}

func TestEncodeLogonFraming(t *testing.T) {
	msg := sampleLogon()
	buf := make([]byte, constants.MaxMsgLen)
	n, err := Encode(msg, buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := buf[:n]
	if !bytes.HasPrefix(out, []byte("8=FIXT.1.1\x019=")) {
		t.Fatalf("unexpected prefix: %q", out)
	}
	if out[len(out)-1] != 0x01 || !bytes.Contains(out[len(out)-8:], []byte("10=")) {
		t.Fatalf("unexpected trailer: %q", out)
	}
}

func TestRoundTripLogon(t *testing.T) {
	msg := sampleLogon()
	buf := make([]byte, constants.MaxMsgLen)
	n, err := Encode(msg, buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, consumed, err := Decode(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if consumed != n {
		t.Fatalf("consumed = %d, want %d", consumed, n)
	}
	if got.Logon.Username != "u" || got.Logon.Password != "p" {
		t.Fatalf("got %+v", got.Logon)
	}
	if got.Header.SenderCompID != msg.Header.SenderCompID {
		t.Fatalf("senderCompID mismatch: %q", got.Header.SenderCompID)
	}
}

func TestRoundTripHeartbeat(t *testing.T) {
	msg := Message{
		Header: Header{
			MsgType:      constants.MsgTypeHeartbeat,
			SenderCompID: "OEPS.1.1",
			TargetCompID: "EzEI.1.1",
			MsgSeqNum:    5,
			SendingTime:  "20140815-09:30:05",
			MsgEncoding:  constants.MsgEncoding,
		},
		Heartbeat: &Heartbeat{},
	}
	buf := make([]byte, constants.MaxMsgLen)
	n, err := Encode(msg, buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, consumed, err := Decode(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if consumed != n {
		t.Fatalf("decodeSize %d != encodeSize %d", consumed, n)
	}
	if got.Header.MsgSeqNum != 5 {
		t.Fatalf("got seqnum %d", got.Header.MsgSeqNum)
	}
}

func TestDecodeNeedMoreOnPartialBody(t *testing.T) {
	msg := sampleLogon()
	buf := make([]byte, constants.MaxMsgLen)
	n, err := Encode(msg, buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	half := n / 2
	if _, _, err := Decode(buf[:half]); !stepcode.Is(err, stepcode.StreamNotEnough) {
		t.Fatalf("want StreamNotEnough, got %v", err)
	}
	// Feed the full buffer next: exactly one message comes out.
	got, consumed, err := Decode(buf[:n])
	if err != nil {
		t.Fatalf("decode after full read: %v", err)
	}
	if consumed != n || got.Logon == nil {
		t.Fatalf("unexpected decode result")
	}
}

func TestDecodeRejectsBodyLenOverflow(t *testing.T) {
	buf := []byte("8=FIXT.1.1\x019=4097\x01")
	_, _, err := Decode(buf)
	if !stepcode.Is(err, stepcode.InvalidFldValue) {
		t.Fatalf("want InvalidFldValue, got %v", err)
	}
}

func TestDecodeAcceptsBodyLenAtMax(t *testing.T) {
	// A message whose declared bodyLen is exactly 4096 but the buffer is
	// short should report StreamNotEnough, not InvalidFldValue — proving
	// 4096 itself was accepted at the bodyLen check.
	buf := []byte("8=FIXT.1.1\x019=4096\x01")
	_, _, err := Decode(buf)
	if !stepcode.Is(err, stepcode.StreamNotEnough) {
		t.Fatalf("want StreamNotEnough, got %v", err)
	}
}

func TestDecodeRejectsChecksumMismatch(t *testing.T) {
	msg := sampleLogon()
	buf := make([]byte, constants.MaxMsgLen)
	n, err := Encode(msg, buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// Corrupt the checksum's last digit.
	buf[n-2] ^= 1
	if buf[n-2] < '0' || buf[n-2] > '9' {
		buf[n-2] = '0'
	}
	_, _, err = Decode(buf[:n])
	if !stepcode.Is(err, stepcode.ChecksumFailed) {
		t.Fatalf("want ChecksumFailed, got %v", err)
	}
}

func TestDecodeRejectsTag96WithoutTag95(t *testing.T) {
	// Hand-build an MDSnapshot body missing tag 95 before tag 96.
	body := "35=W\x0149=S\x0156=T\x0134=1\x0152=20140815-09:30:00\x01347=GBK\x01" +
		"167=1\x01339=1\x011180=1\x011181=1\x0175=20140815\x01265=0\x015468=1\x0196=abc\x01"
	cs := checksumOf(body)
	raw := "8=FIXT.1.1\x019=" + itoa(len(body)) + "\x01" + body + "10=" + cs + "\x01"
	_, _, err := Decode([]byte(raw))
	if !stepcode.Is(err, stepcode.UnexpectedTag) {
		t.Fatalf("want UnexpectedTag, got %v", err)
	}
}

func checksumOf(s string) string {
	full := "8=FIXT.1.1\x019=" + itoa(len(s)) + "\x01" + s
	var sum byte
	for i := 0; i < len(full); i++ {
		sum += full[i]
	}
	return pad3(int(sum))
}

func pad3(n int) string {
	const digits = "0123456789"
	return string([]byte{digits[n/100%10], digits[n/10%10], digits[n%10]})
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func TestValidateRejectsMissingPassword(t *testing.T) {
	msg := sampleLogon()
	msg.Logon.PasswordSet = false
	if err := Validate(msg, DirectionRequest); !stepcode.Is(err, stepcode.FldNotFound) {
		t.Fatalf("want FldNotFound, got %v", err)
	}
}

func TestValidateRejectsWrongEncoding(t *testing.T) {
	msg := sampleLogon()
	msg.Header.MsgEncoding = "UTF8"
	if err := Validate(msg, DirectionRequest); !stepcode.Is(err, stepcode.InvalidFldValue) {
		t.Fatalf("want InvalidFldValue, got %v", err)
	}
}

func TestValidateMDSnapshotRequiresFields(t *testing.T) {
	msg := Message{
		Header: Header{
			MsgType: constants.MsgTypeMDSnapshot, SenderCompID: "a", TargetCompID: "b",
			MsgSeqNum: 1, SendingTime: "t", MsgEncoding: constants.MsgEncoding,
		},
		MDSnapshot: &MDSnapshot{SecurityType: constants.SecurityTypeSTK},
	}
	if err := Validate(msg, DirectionReceived); !stepcode.Is(err, stepcode.FldNotFound) {
		t.Fatalf("want FldNotFound, got %v", err)
	}
}
