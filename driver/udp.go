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
	"sync"
	"time"

	"github.com/SSEDev/OrientalExpress/channel"
	"github.com/SSEDev/OrientalExpress/database"
	"github.com/SSEDev/OrientalExpress/logging"
	"github.com/SSEDev/OrientalExpress/stepcode"
	"github.com/SSEDev/OrientalExpress/stepmsg"
)

// UDPDriver is the §4.7 connectionless variant: no session state machine,
// login/logout/subscribe complete locally by posting a channel.ControlEvent
// that the channel worker turns into a synthesized success callback.
type UDPDriver struct {
	hid int
	ch  *channel.Channel
	mdb database.MarketDatabase

	mu            sync.Mutex
	spi           SPI
	heartbeatIntl int64
	recvIdleTicks int64
}

// NewUDP builds a UDPDriver for hid.
func NewUDP(hid int) *UDPDriver {
	return &UDPDriver{hid: hid, spi: NoopSPI{}}
}

// SetSPI installs the callback table this driver reports to.
func (d *UDPDriver) SetSPI(spi SPI) {
	d.mu.Lock()
	d.spi = spi
	d.mu.Unlock()
}

func (d *UDPDriver) getSPI() SPI {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.spi
}

// Connect joins the multicast group addr names ("mcAddr:mcPort;localAddr",
// §6). UDP has no logon handshake: the channel is simply started.
func (d *UDPDriver) Connect(addr string) error {
	d.mu.Lock()
	if d.ch != nil {
		d.mu.Unlock()
		return stepcode.New(stepcode.DuplicateConnect, "hid %d already connecting/connected", d.hid)
	}
	d.ch = channel.NewUDP(addr, d)
	d.mu.Unlock()
	d.ch.Startup()
	return nil
}

// Disconnect tears the channel down and joins its worker goroutine.
func (d *UDPDriver) Disconnect() {
	d.mu.Lock()
	ch := d.ch
	d.mu.Unlock()
	if ch == nil {
		return
	}
	ch.Shutdown()
	ch.JoinChannel()
}

// Close is Disconnect plus releasing the channel reference.
func (d *UDPDriver) Close() {
	d.Disconnect()
	d.mu.Lock()
	d.ch = nil
	d.mu.Unlock()
}

// Login has no wire effect on UDP; it caches the heartbeat interval
// (kept for parity with the TCP driver's idle-warning bookkeeping) and
// posts a ControlLogin event that synthesizes a success callback from the
// channel worker goroutine, preserving the invariant that every SPI
// callback runs on that one goroutine (§5 "Ordering guarantees").
func (d *UDPDriver) Login(username, password string, heartbeatIntl int64) error {
	d.mu.Lock()
	ch := d.ch
	d.heartbeatIntl = heartbeatIntl
	d.mu.Unlock()
	if ch == nil {
		return stepcode.New(stepcode.InvalidOperation, "hid %d not connected", d.hid)
	}
	return ch.PostControl(channel.ControlEvent{Kind: channel.ControlLogin, Data: heartbeatIntl})
}

// Logout posts a ControlLogout event.
func (d *UDPDriver) Logout(reason string) error {
	d.mu.Lock()
	ch := d.ch
	d.mu.Unlock()
	if ch == nil {
		return stepcode.New(stepcode.InvalidOperation, "hid %d not connected", d.hid)
	}
	return ch.PostControl(channel.ControlEvent{Kind: channel.ControlLogout, Data: reason})
}

// Subscribe registers market with the market database synchronously
// (§4.4 runs on the calling goroutine same as TCP) and posts a
// ControlSubscribed event so the confirmation callback still arrives on
// the worker goroutine.
func (d *UDPDriver) Subscribe(market database.MktType) error {
	d.mu.Lock()
	ch := d.ch
	if ch == nil {
		d.mu.Unlock()
		return stepcode.New(stepcode.InvalidOperation, "hid %d not connected", d.hid)
	}
	err := d.mdb.Subscribe(market)
	d.mu.Unlock()
	if err != nil {
		return err
	}
	return ch.PostControl(channel.ControlEvent{Kind: channel.ControlSubscribed, Data: market})
}

// --- channel.Listener ---

// Connected implements channel.Listener.
func (d *UDPDriver) Connected() {
	d.getSPI().Connected(d.hid)
}

// Disconnected implements channel.Listener: a failed open or a lost
// multicast read resets the subscription set, same as the TCP driver,
// though UDP has no outbound sequence number to reset. A user Disconnect
// stops the worker without calling this.
func (d *UDPDriver) Disconnected(err error) {
	d.mu.Lock()
	d.mdb.UnsubscribeAll()
	d.recvIdleTicks = 0
	d.mu.Unlock()

	code, reason := stepcode.SocketError, ""
	if err != nil {
		reason = err.Error()
		if se, ok := err.(*stepcode.Error); ok {
			code = se.Code
		}
	}
	d.getSPI().Disconnected(d.hid, code, reason)
}

// ControlFired synthesizes the local success callback for a posted
// control event (§4.5 "Event trigger (UDP)").
func (d *UDPDriver) ControlFired(ev channel.ControlEvent) {
	switch ev.Kind {
	case channel.ControlLogin:
		hb, _ := ev.Data.(int64)
		d.getSPI().LoginRsp(d.hid, hb, stepcode.OK, "")
	case channel.ControlLogout:
		reason, _ := ev.Data.(string)
		_ = reason
		d.getSPI().LogoutRsp(d.hid, stepcode.OK, "")
	case channel.ControlSubscribed:
		market, _ := ev.Data.(database.MktType)
		d.getSPI().MktDataSubRsp(d.hid, market, stepcode.OK, "")
	}
}

// RecvTimeout implements channel.Listener: UDP has no heartbeat to send
// (no login at the wire level), but still raises the 35s keepalive
// warning an idle multicast feed deserves (§3 "one idle counter").
func (d *UDPDriver) RecvTimeout() {
	d.mu.Lock()
	d.recvIdleTicks++
	warn := time.Duration(d.recvIdleTicks)*tickInterval >= keepaliveWarnAfter
	if warn {
		d.recvIdleTicks = 0
	}
	d.mu.Unlock()
	if warn {
		d.getSPI().EventOccurred(d.hid, LevelWarning, stepcode.CheckKeepaliveTimeout, "no data received for 35s")
	}
}

// Received implements channel.Listener: one UDP datagram carries exactly
// one STEP message (§6), so there is no reassembly buffer — a short or
// malformed read is dropped rather than treated as fatal, since UDP is
// lossy and out-of-order by nature (§4.7).
func (d *UDPDriver) Received(buf []byte, n int) bool {
	msg, _, err := stepmsg.Decode(buf[:n])
	if err != nil {
		logging.Warn(d.hid, "dropping malformed datagram: %v", err)
		return true
	}
	if err := stepmsg.Validate(msg, stepmsg.DirectionReceived); err != nil {
		logging.Warn(d.hid, "dropping invalid %s: %v", msg.Header.MsgType, err)
		return true
	}
	switch {
	case msg.MDSnapshot != nil:
		d.handleMDSnapshot(*msg.MDSnapshot)
	case msg.TradingStatus != nil:
		d.handleTradingStatus(*msg.TradingStatus)
	}
	return true
}

func (d *UDPDriver) handleMDSnapshot(body stepmsg.MDSnapshot) {
	d.mu.Lock()
	market, outcome, err := d.mdb.AcceptSnapshot(body)
	d.mu.Unlock()
	if err != nil {
		logging.Warn(d.hid, "AcceptSnapshot: %v", err)
		return
	}
	if outcome == database.Dropped {
		return
	}
	if outcome == database.AcceptedWithDataSourceChanged {
		d.getSPI().EventOccurred(d.hid, LevelWarning, stepcode.DataSourceChanged, "publisher identity changed")
	}
	d.getSPI().MktDataArrived(d.hid, MktData{
		MktType:      market,
		TradSesMode:  body.TradSesMode,
		ApplID:       body.ApplID,
		ApplSeqNum:   body.ApplSeqNum,
		TradeDate:    body.TradeDate,
		MdUpdateType: body.MdUpdateType,
		MdCount:      body.MdCount,
		MdData:       body.MdData,
	})
}

func (d *UDPDriver) handleTradingStatus(body stepmsg.TradingStatus) {
	d.mu.Lock()
	market, outcome, err := d.mdb.AcceptStatus(body)
	d.mu.Unlock()
	if err != nil {
		logging.Warn(d.hid, "AcceptStatus: %v", err)
		return
	}
	if outcome == database.Dropped {
		return
	}
	d.getSPI().MktStatusChanged(d.hid, MktStatus{
		MktType:         market,
		TradSesMode:     body.TradSesMode,
		MktStatus:       body.TradingSessionID,
		TotNoRelatedSym: body.TotNoRelatedSym,
	})
}
