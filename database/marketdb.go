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

// Package database holds the market-data acceptance engine: the
// subscription set, per-market sequence state, and the accept/drop
// decision for each incoming snapshot or status message. It is the
// in-memory equivalent of the old per-process market database — this
// library never persists it across a restart.
//
// A MarketDatabase has no internal locking: its owning driver holds its
// own mutex around every call (Subscribe runs on the API caller's
// goroutine, UnsubscribeAll and the Accept methods on the channel worker).
package database

import (
	"github.com/SSEDev/OrientalExpress/constants"
	"github.com/SSEDev/OrientalExpress/stepcode"
	"github.com/SSEDev/OrientalExpress/stepmsg"
)

// MktType is the EpsMktType domain: a concrete tradable market, or ALL as
// a subscribe-time wildcard.
type MktType int

const (
	MktAll MktType = iota
	MktSTK
	MktDEV
	mktTypeNum = MktDEV
)

// SecurityType renders m as the tag-167 wire value, the inverse of
// parseMktType. Used by the driver to build an outbound MDRequest.
func (m MktType) SecurityType() string {
	switch m {
	case MktAll:
		return constants.SecurityTypeAll
	case MktSTK:
		return constants.SecurityTypeSTK
	case MktDEV:
		return constants.SecurityTypeDEV
	default:
		return ""
	}
}

// ParseSecurityType is the inverse of MktType.SecurityType: it parses a
// decoded tag-167 value, used by the driver to report which market an
// MDRequest confirmation was for.
func ParseSecurityType(s string) (MktType, error) {
	return parseMktType(s)
}

func parseMktType(s string) (MktType, error) {
	switch s {
	case constants.SecurityTypeAll:
		return MktAll, nil
	case constants.SecurityTypeSTK:
		return MktSTK, nil
	case constants.SecurityTypeDEV:
		return MktDEV, nil
	default:
		return 0, stepcode.New(stepcode.InvalidMktType, "unrecognized securityType %q", s)
	}
}

// MarketDatabase is the per-driver acceptance engine described in §4.4:
// a subscription flag, last accepted sequence number, and last status per
// market, plus the current publisher identity.
type MarketDatabase struct {
	subscribed     [mktTypeNum + 1]bool
	lastApplSeqNum [mktTypeNum + 1]uint64
	lastStatus     [mktTypeNum + 1]string
	applID         uint64
}

// Subscribe marks market as receivable. MktAll subscribes every concrete
// market not already subscribed, failing with DuplicateSubscribed only if
// every concrete market was already subscribed.
func (db *MarketDatabase) Subscribe(market MktType) error {
	if market > mktTypeNum {
		return stepcode.New(stepcode.InvalidMktType, "market %d out of range", market)
	}
	if market == MktAll {
		allAlreadySubscribed := true
		for m := MktSTK; m <= mktTypeNum; m++ {
			if !db.subscribed[m] {
				db.subscribed[m] = true
				allAlreadySubscribed = false
			}
		}
		if allAlreadySubscribed {
			return stepcode.New(stepcode.DuplicateSubscribed, "all markets already subscribed")
		}
		return nil
	}
	if db.subscribed[market] {
		return stepcode.New(stepcode.DuplicateSubscribed, "market %d already subscribed", market)
	}
	db.subscribed[market] = true
	return nil
}

// UnsubscribeAll clears every subscription flag. Sequence counters are
// left untouched so that a reconnect followed by re-subscribe still
// rejects the same backflow (§4.4).
func (db *MarketDatabase) UnsubscribeAll() {
	for m := range db.subscribed {
		db.subscribed[m] = false
	}
}

// Outcome is the disposition AcceptSnapshot/AcceptStatus assigns to one
// inbound message.
type Outcome int

const (
	Accepted Outcome = iota
	AcceptedWithDataSourceChanged
	Dropped
)

// AcceptSnapshot runs the §4.4 algorithm against a decoded MDSnapshot and
// returns the market it belongs to, the disposition, and an error only
// for INVALID_MKTTYPE (every other disposition — unsubscribed, backflow —
// is reported via Outcome, not an error, matching §7's "recovered
// locally" list).
func (db *MarketDatabase) AcceptSnapshot(msg stepmsg.MDSnapshot) (MktType, Outcome, error) {
	market, err := parseMktType(msg.SecurityType)
	if err != nil {
		return 0, Dropped, err
	}
	if market == MktAll {
		return 0, Dropped, stepcode.New(stepcode.InvalidMktType, "securityType ALL not valid on a snapshot")
	}
	if !db.subscribed[market] {
		return market, Dropped, nil
	}

	applID := uint64(msg.ApplID)
	seqNum := uint64(msg.ApplSeqNum)

	if applID == db.applID {
		if seqNum > db.lastApplSeqNum[market] {
			db.lastApplSeqNum[market] = seqNum
			return market, Accepted, nil
		}
		return market, Dropped, nil
	}

	prevApplID := db.applID
	db.applID = applID
	db.lastApplSeqNum[market] = seqNum
	if prevApplID != 0 {
		return market, AcceptedWithDataSourceChanged, nil
	}
	return market, Accepted, nil
}

// AcceptStatus runs the status half of §4.4: unsubscribed markets are
// dropped, and a status identical to the stored one is suppressed as
// STATUS_UNCHANGED.
func (db *MarketDatabase) AcceptStatus(msg stepmsg.TradingStatus) (MktType, Outcome, error) {
	market, err := parseMktType(msg.SecurityType)
	if err != nil {
		return 0, Dropped, err
	}
	if market == MktAll {
		return 0, Dropped, stepcode.New(stepcode.InvalidMktType, "securityType ALL not valid on a status")
	}
	if !db.subscribed[market] {
		return market, Dropped, nil
	}
	if db.lastStatus[market] == msg.TradingSessionID {
		return market, Dropped, nil
	}
	db.lastStatus[market] = msg.TradingSessionID
	return market, Accepted, nil
}
