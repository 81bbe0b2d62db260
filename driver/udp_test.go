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

package driver

import (
	"testing"

	"github.com/SSEDev/OrientalExpress/channel"
	"github.com/SSEDev/OrientalExpress/database"
	"github.com/SSEDev/OrientalExpress/stepcode"
	"github.com/SSEDev/OrientalExpress/stepmsg"
)

func TestUDPDriverLoginWithoutConnectFails(t *testing.T) {
	d := NewUDP(1)
	if err := d.Login("u", "p", 30); !stepcode.Is(err, stepcode.InvalidOperation) {
		t.Fatalf("want InvalidOperation, got %v", err)
	}
}

func TestUDPDriverSubscribeWithoutConnectFails(t *testing.T) {
	d := NewUDP(1)
	if err := d.Subscribe(database.MktSTK); !stepcode.Is(err, stepcode.InvalidOperation) {
		t.Fatalf("want InvalidOperation, got %v", err)
	}
}

func TestUDPDriverControlFiredSynthesizesLoginRsp(t *testing.T) {
	spi := &recordingSPI{}
	d := NewUDP(1)
	d.SetSPI(spi)

	d.ControlFired(channel.ControlEvent{Kind: channel.ControlLogin, Data: int64(30)})

	got := spi.lastLoginRsp()
	if got.code != stepcode.OK || got.heartbeatIntl != 30 {
		t.Fatalf("LoginRsp = %+v", got)
	}
}

func TestUDPDriverControlFiredSynthesizesLogoutRsp(t *testing.T) {
	spi := &recordingSPI{}
	d := NewUDP(1)
	d.SetSPI(spi)

	d.ControlFired(channel.ControlEvent{Kind: channel.ControlLogout, Data: "done"})

	if got := spi.lastLogoutCode(); got != stepcode.OK {
		t.Fatalf("LogoutRsp code = %v, want OK", got)
	}
}

func TestUDPDriverControlFiredSynthesizesSubRsp(t *testing.T) {
	spi := &recordingSPI{}
	d := NewUDP(1)
	d.SetSPI(spi)

	d.ControlFired(channel.ControlEvent{Kind: channel.ControlSubscribed, Data: database.MktDEV})

	if len(spi.subRsps) != 1 || spi.subRsps[0].market != database.MktDEV || spi.subRsps[0].code != stepcode.OK {
		t.Fatalf("subRsps = %+v", spi.subRsps)
	}
}

func TestUDPDriverReceivedDropsMalformedDatagramWithoutFailing(t *testing.T) {
	d := NewUDP(1)
	d.SetSPI(&recordingSPI{})

	if !d.Received([]byte("garbage"), 7) {
		t.Fatal("a malformed datagram must be dropped, not treated as a fatal transport error")
	}
}

func TestUDPDriverHandleMDSnapshotDeliversAcceptedMarket(t *testing.T) {
	spi := &recordingSPI{}
	d := NewUDP(1)
	d.SetSPI(spi)
	d.mdb.Subscribe(database.MktDEV)

	d.handleMDSnapshot(stepmsg.MDSnapshot{
		SecurityType: "2",
		ApplID:       3,
		ApplSeqNum:   1,
		MdData:       []byte("quote"),
	})

	if len(spi.snapshots) != 1 || spi.snapshots[0].MktType != database.MktDEV {
		t.Fatalf("snapshots = %+v", spi.snapshots)
	}
}

func TestUDPDriverHandleTradingStatusSuppressesDuplicate(t *testing.T) {
	spi := &recordingSPI{}
	d := NewUDP(1)
	d.SetSPI(spi)
	d.mdb.Subscribe(database.MktSTK)

	status := stepmsg.TradingStatus{SecurityType: "1", TradingSessionID: "OPEN"}
	d.handleTradingStatus(status)
	d.handleTradingStatus(status)

	if len(spi.statuses) != 1 {
		t.Fatalf("got %d status callbacks, want 1 (duplicate must be suppressed)", len(spi.statuses))
	}
}

func TestUDPDriverDisconnectedClearsSubscriptions(t *testing.T) {
	spi := &recordingSPI{}
	d := NewUDP(1)
	d.SetSPI(spi)
	d.mdb.Subscribe(database.MktSTK)

	d.Disconnected(nil)

	market, outcome, _ := d.mdb.AcceptSnapshot(stepmsg.MDSnapshot{SecurityType: "1"})
	if outcome != database.Dropped || market != database.MktSTK {
		t.Fatalf("subscription survived Disconnected: outcome=%v", outcome)
	}
	if len(spi.disconnected) != 1 {
		t.Fatalf("Disconnected callback count = %d, want 1", len(spi.disconnected))
	}
}

func TestUDPDriverDoubleConnectFails(t *testing.T) {
	d := NewUDP(1)
	if err := d.Connect("239.1.1.1:12345;127.0.0.1"); err != nil {
		t.Fatalf("first Connect: %v", err)
	}
	defer d.Close()

	if err := d.Connect("239.1.1.1:12345;127.0.0.1"); !stepcode.Is(err, stepcode.DuplicateConnect) {
		t.Fatalf("want DuplicateConnect, got %v", err)
	}
}
