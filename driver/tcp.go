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

	"github.com/SSEDev/OrientalExpress/builder"
	"github.com/SSEDev/OrientalExpress/channel"
	"github.com/SSEDev/OrientalExpress/database"
	"github.com/SSEDev/OrientalExpress/logging"
	"github.com/SSEDev/OrientalExpress/stepcode"
	"github.com/SSEDev/OrientalExpress/stepmsg"
)

// tickInterval mirrors channel's recv-timeout tick: the TCP driver counts
// keepalive idle ticks in units of this, per §4.6 ("≈1 s").
const tickInterval = time.Second

// keepaliveWarnAfter is the 35s receive-silence threshold from §4.6/§8
// scenario 6; it never triggers a disconnect, only a warning.
const keepaliveWarnAfter = 35 * time.Second

// reassemblyCap is the initial capacity of the per-driver reassembly
// buffer: "capacity >= 2x one socket read" (§3, Driver TCP variant).
const reassemblyCap = 2 * channel.RecvBufSize

// TCPDriver is the §4.6 session driver: a state machine layered on one
// channel.Channel, translating decoded STEP messages into SPI callbacks
// and API calls into outbound requests.
type TCPDriver struct {
	hid int
	ch  *channel.Channel
	mdb database.MarketDatabase

	mu            sync.Mutex
	spi           SPI
	state         State
	nextSeqNum    int64
	username      string
	password      string
	heartbeatIntl int64
	recvIdleTicks int64
	commIdleTicks int64
	reasm         []byte
}

// NewTCP builds a TCPDriver for hid, initially reporting to a NoopSPI
// until RegisterSpi/SetSPI installs the real one.
func NewTCP(hid int) *TCPDriver {
	return &TCPDriver{
		hid:        hid,
		spi:        NoopSPI{},
		nextSeqNum: 1,
		reasm:      make([]byte, 0, reassemblyCap),
	}
}

// SetSPI installs the callback table this driver reports to.
func (d *TCPDriver) SetSPI(spi SPI) {
	d.mu.Lock()
	d.spi = spi
	d.mu.Unlock()
}

func (d *TCPDriver) getSPI() SPI {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.spi
}

// Connect starts the channel toward addr. It fails with DUPLICATE_CONNECT
// whenever this driver already holds a channel; Disconnect keeps that
// channel, so only Close makes a new Connect possible.
func (d *TCPDriver) Connect(addr string) error {
	d.mu.Lock()
	if d.ch != nil {
		d.mu.Unlock()
		return stepcode.New(stepcode.DuplicateConnect, "hid %d already connecting/connected", d.hid)
	}
	d.ch = channel.NewTCP(addr, d)
	d.mu.Unlock()
	d.ch.Startup()
	return nil
}

// Disconnect tears the channel down and joins its worker goroutine. It is
// idempotent: calling it on an already-Disconnected driver is a no-op.
func (d *TCPDriver) Disconnect() {
	d.mu.Lock()
	ch := d.ch
	d.mu.Unlock()
	if ch == nil {
		return
	}
	ch.Shutdown()
	ch.JoinChannel()
}

// Close is Disconnect plus releasing the channel reference, called from
// CloseHandle (§3 "destroyed by CloseHandle... which first performs an
// idempotent disconnect").
func (d *TCPDriver) Close() {
	d.Disconnect()
	d.mu.Lock()
	d.ch = nil
	d.mu.Unlock()
}

// Login sends a Logon request. Only legal from Connected (§8 boundary:
// e.g. subscribing while LoggingIn is INVALID_OPERATION; the same State
// guard covers Login).
func (d *TCPDriver) Login(username, password string, heartbeatIntl int64) error {
	d.mu.Lock()
	if d.state != Connected {
		st := d.state
		d.mu.Unlock()
		return stepcode.New(stepcode.InvalidOperation, "login not valid in state %s", st)
	}
	d.username = username
	d.password = password
	d.heartbeatIntl = heartbeatIntl
	d.state = LoggingIn
	seq := d.nextSeqNum
	d.nextSeqNum++
	d.mu.Unlock()

	return d.sendMessage(builder.Logon(seq, username, password, heartbeatIntl))
}

// Logout sends a Logout request. Only legal from LoggedIn or Publishing.
func (d *TCPDriver) Logout(reason string) error {
	d.mu.Lock()
	if d.state != LoggedIn && d.state != Publishing {
		st := d.state
		d.mu.Unlock()
		return stepcode.New(stepcode.InvalidOperation, "logout not valid in state %s", st)
	}
	d.state = LoggingOut
	seq := d.nextSeqNum
	d.nextSeqNum++
	d.mu.Unlock()

	return d.sendMessage(builder.Logout(seq, reason))
}

// Subscribe registers market with the market database and sends the
// matching MDRequest. Only legal from LoggedIn or Publishing.
func (d *TCPDriver) Subscribe(market database.MktType) error {
	d.mu.Lock()
	if d.state != LoggedIn && d.state != Publishing {
		st := d.state
		d.mu.Unlock()
		return stepcode.New(stepcode.InvalidOperation, "subscribe not valid in state %s", st)
	}
	if err := d.mdb.Subscribe(market); err != nil {
		d.mu.Unlock()
		return err
	}
	d.state = Publishing
	seq := d.nextSeqNum
	d.nextSeqNum++
	d.mu.Unlock()

	return d.sendMessage(builder.MDRequest(seq, market.SecurityType()))
}

func (d *TCPDriver) sendMessage(msg stepmsg.Message) error {
	if err := stepmsg.Validate(msg, stepmsg.DirectionRequest); err != nil {
		return err
	}
	var buf [4160]byte
	n, err := stepmsg.Encode(msg, buf[:])
	if err != nil {
		return err
	}
	d.mu.Lock()
	ch := d.ch
	d.mu.Unlock()
	if ch == nil {
		return stepcode.New(stepcode.InvalidOperation, "hid %d not connected", d.hid)
	}
	out := append([]byte(nil), buf[:n]...)
	return ch.Send(out)
}

// --- channel.Listener ---

// Connected implements channel.Listener: Disconnected -> Connected
// (§4.6's transition table).
func (d *TCPDriver) Connected() {
	d.mu.Lock()
	d.state = Connected
	d.mu.Unlock()
	d.getSPI().Connected(d.hid)
}

// Disconnected implements channel.Listener. Every disconnection the
// channel reports — a failed open, a send or read error, or a fatal
// decode — resets the market database and outbound sequence and notifies
// the SPI uniformly (§4.6's "any -> channel.disconnected -> Disconnected"
// row; see DESIGN.md). A user Disconnect stops the worker without this
// callback, so it neither resets this state nor notifies the SPI.
func (d *TCPDriver) Disconnected(err error) {
	d.mu.Lock()
	d.mdb.UnsubscribeAll()
	d.nextSeqNum = 1
	d.recvIdleTicks = 0
	d.commIdleTicks = 0
	d.reasm = d.reasm[:0]
	d.state = Disconnected
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

// ControlFired is never invoked on a TCP channel (nothing posts to a TCP
// channel's control queue); present only to satisfy channel.Listener.
func (d *TCPDriver) ControlFired(ev channel.ControlEvent) {}

// RecvTimeout implements channel.Listener's per-tick keepalive clock
// (§4.6 "Keepalive").
func (d *TCPDriver) RecvTimeout() {
	d.mu.Lock()
	d.recvIdleTicks++
	d.commIdleTicks++

	sendHeartbeat := false
	var seq int64
	if time.Duration(d.commIdleTicks)*tickInterval >= time.Duration(d.heartbeatIntl)*time.Second && d.heartbeatIntl > 0 {
		sendHeartbeat = true
		seq = d.nextSeqNum
		d.nextSeqNum++
		d.commIdleTicks = 0
	}

	warnKeepalive := false
	if time.Duration(d.recvIdleTicks)*tickInterval >= keepaliveWarnAfter {
		warnKeepalive = true
		d.recvIdleTicks = 0
	}
	d.mu.Unlock()

	if sendHeartbeat {
		if err := d.sendMessage(builder.Heartbeat(seq)); err != nil {
			logging.Warn(d.hid, "failed to send keepalive heartbeat: %v", err)
		}
	}
	if warnKeepalive {
		d.getSPI().EventOccurred(d.hid, LevelWarning, stepcode.CheckKeepaliveTimeout, "no data received for 35s")
	}
}

// Received implements channel.Listener: append the new bytes, decode as
// many complete messages as are available, and compact the unconsumed
// tail to the front (§4.6 "Receive path").
func (d *TCPDriver) Received(buf []byte, n int) bool {
	d.mu.Lock()
	d.reasm = append(d.reasm, buf[:n]...)
	data := d.reasm
	consumed := 0

	for {
		msg, used, err := stepmsg.Decode(data[consumed:])
		if err != nil {
			if stepcode.Is(err, stepcode.StreamNotEnough) {
				break
			}
			d.mu.Unlock()
			logging.Warn(d.hid, "fatal decode error: %v", err)
			return false
		}
		consumed += used
		d.recvIdleTicks = 0
		d.commIdleTicks = 0
		d.mu.Unlock()
		d.handleMessage(msg)
		d.mu.Lock()
		data = d.reasm
	}

	remaining := len(data) - consumed
	copy(d.reasm[:remaining], data[consumed:])
	d.reasm = d.reasm[:remaining]
	d.mu.Unlock()
	return true
}

// handleMessage dispatches one decoded message per §4.6's transition
// table, called with the driver lock released so SPI callbacks are free
// to call back into the public API.
func (d *TCPDriver) handleMessage(msg stepmsg.Message) {
	if err := stepmsg.Validate(msg, stepmsg.DirectionReceived); err != nil {
		logging.Warn(d.hid, "dropping invalid %s: %v", msg.Header.MsgType, err)
		return
	}
	switch {
	case msg.Logon != nil:
		d.handleLogonRsp(*msg.Logon)
	case msg.Logout != nil:
		d.handleLogoutRsp(*msg.Logout)
	case msg.MDRequest != nil:
		d.handleMDRequestRsp(*msg.MDRequest)
	case msg.MDSnapshot != nil:
		d.handleMDSnapshot(msg.Header.SendingTime, *msg.MDSnapshot)
	case msg.TradingStatus != nil:
		d.handleTradingStatus(*msg.TradingStatus)
	case msg.Heartbeat != nil:
		// No action: receiving a Heartbeat already reset the idle
		// counters above.
	}
}

func (d *TCPDriver) handleLogonRsp(body stepmsg.Logon) {
	d.mu.Lock()
	if d.state != LoggingIn {
		d.mu.Unlock()
		return
	}
	d.state = LoggedIn
	hb := d.heartbeatIntl
	d.mu.Unlock()
	d.getSPI().LoginRsp(d.hid, hb, stepcode.OK, "")
}

func (d *TCPDriver) handleLogoutRsp(body stepmsg.Logout) {
	d.mu.Lock()
	prev := d.state
	d.state = LoggedOut
	d.mu.Unlock()

	switch prev {
	case LoggingIn:
		d.getSPI().LoginRsp(d.hid, 0, stepcode.LoginFailed, body.Text)
	case LoggingOut:
		d.getSPI().LogoutRsp(d.hid, stepcode.OK, "")
	case LoggedIn, Publishing:
		// Unsolicited Logout from the venue: report it the same way a
		// confirmed logout reads to the caller, preserving the source's
		// intent (dispatch on the pre-transition state) per spec.md's
		// Open Questions on HandleLogoutRsp.
		d.getSPI().LogoutRsp(d.hid, stepcode.OK, body.Text)
	}
}

func (d *TCPDriver) handleMDRequestRsp(body stepmsg.MDRequest) {
	d.mu.Lock()
	if d.state != Publishing {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()
	market, err := database.ParseSecurityType(body.SecurityType)
	if err != nil {
		d.getSPI().MktDataSubRsp(d.hid, market, stepcode.SubMarketDataFailed, err.Error())
		return
	}
	d.getSPI().MktDataSubRsp(d.hid, market, stepcode.OK, "")
}

func (d *TCPDriver) handleMDSnapshot(sendingTime string, body stepmsg.MDSnapshot) {
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
		MktTime:      sendingTime,
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

func (d *TCPDriver) handleTradingStatus(body stepmsg.TradingStatus) {
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
