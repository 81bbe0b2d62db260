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

// Package driver is the per-handle session driver: the TCP state machine
// (§4.6) and the stateless UDP variant (§4.7), both built on top of a
// channel.Channel and a database.MarketDatabase, translating wire
// messages into the user-facing SPI callbacks below.
package driver

import (
	"github.com/SSEDev/OrientalExpress/database"
	"github.com/SSEDev/OrientalExpress/stepcode"
)

// Level is the severity of an EventOccurred notification.
type Level int

const (
	LevelWarning Level = iota
	LevelError
	LevelFatal
)

// SPI is the asynchronous callback interface a driver invokes on its own
// worker goroutine (§6 "Callback surface"). Every method is called with
// the driver's lock released, so an implementation is free to call back
// into the public API (e.g. Disconnect from within Disconnected).
type SPI interface {
	Connected(hid int)
	Disconnected(hid int, code stepcode.Code, reason string)
	LoginRsp(hid int, heartbeatIntl int64, code stepcode.Code, reason string)
	LogoutRsp(hid int, code stepcode.Code, reason string)
	MktDataSubRsp(hid int, market database.MktType, code stepcode.Code, reason string)
	MktDataArrived(hid int, snapshot MktData)
	MktStatusChanged(hid int, status MktStatus)
	EventOccurred(hid int, level Level, code stepcode.Code, text string)
}

// MktData is the delivered, typed form of an accepted MDSnapshot (the
// source's EpsMktDataT / ConvertMktData).
type MktData struct {
	MktTime      string
	MktType      database.MktType
	TradSesMode  int64
	ApplID       int64
	ApplSeqNum   int64
	TradeDate    string
	MdUpdateType int64
	MdCount      int64
	MdData       []byte
}

// MktStatus is the delivered, typed form of an accepted TradingStatus.
type MktStatus struct {
	MktType          database.MktType
	TradSesMode      int64
	MktStatus        string
	TotNoRelatedSym  int64
}

// NoopSPI implements SPI with empty methods, useful as an embeddable base
// for callers that only care about a subset of callbacks.
type NoopSPI struct{}

func (NoopSPI) Connected(hid int)                                                {}
func (NoopSPI) Disconnected(hid int, code stepcode.Code, reason string)          {}
func (NoopSPI) LoginRsp(hid int, heartbeatIntl int64, code stepcode.Code, reason string) {}
func (NoopSPI) LogoutRsp(hid int, code stepcode.Code, reason string)             {}
func (NoopSPI) MktDataSubRsp(hid int, market database.MktType, code stepcode.Code, reason string) {
}
func (NoopSPI) MktDataArrived(hid int, snapshot MktData)     {}
func (NoopSPI) MktStatusChanged(hid int, status MktStatus)   {}
func (NoopSPI) EventOccurred(hid int, level Level, code stepcode.Code, text string) {}
