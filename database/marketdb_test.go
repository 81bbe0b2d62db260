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

package database

import (
	"testing"

	"github.com/SSEDev/OrientalExpress/constants"
	"github.com/SSEDev/OrientalExpress/stepcode"
	"github.com/SSEDev/OrientalExpress/stepmsg"
)

func snapshot(securityType string, applID, applSeqNum int64) stepmsg.MDSnapshot {
	return stepmsg.MDSnapshot{SecurityType: securityType, ApplID: applID, ApplSeqNum: applSeqNum}
}

func TestSubscribeAllThenDuplicate(t *testing.T) {
	var db MarketDatabase
	if err := db.Subscribe(MktAll); err != nil {
		t.Fatalf("first subscribe all: %v", err)
	}
	if err := db.Subscribe(MktAll); !stepcode.Is(err, stepcode.DuplicateSubscribed) {
		t.Fatalf("want DuplicateSubscribed, got %v", err)
	}
}

func TestSubscribeAllPartial(t *testing.T) {
	var db MarketDatabase
	if err := db.Subscribe(MktSTK); err != nil {
		t.Fatalf("subscribe STK: %v", err)
	}
	// DEV is not yet subscribed, so subscribing ALL should succeed even
	// though STK already is.
	if err := db.Subscribe(MktAll); err != nil {
		t.Fatalf("subscribe all with STK already set: %v", err)
	}
	if !db.subscribed[MktDEV] {
		t.Fatalf("DEV should now be subscribed")
	}
}

func TestSubscribeDuplicateConcrete(t *testing.T) {
	var db MarketDatabase
	if err := db.Subscribe(MktSTK); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := db.Subscribe(MktSTK); !stepcode.Is(err, stepcode.DuplicateSubscribed) {
		t.Fatalf("want DuplicateSubscribed, got %v", err)
	}
}

// TestBackflowDrop is end-to-end scenario 3 from spec §8.
func TestBackflowDrop(t *testing.T) {
	var db MarketDatabase
	if err := db.Subscribe(MktSTK); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	market, outcome, err := db.AcceptSnapshot(snapshot(constants.SecurityTypeSTK, 100, 10))
	if err != nil || market != MktSTK || outcome != Accepted {
		t.Fatalf("first snapshot: market=%v outcome=%v err=%v", market, outcome, err)
	}
	market, outcome, err = db.AcceptSnapshot(snapshot(constants.SecurityTypeSTK, 100, 10))
	if err != nil || market != MktSTK || outcome != Dropped {
		t.Fatalf("duplicate seqnum should be dropped: market=%v outcome=%v err=%v", market, outcome, err)
	}
}

// TestPublisherChange is end-to-end scenario 4 from spec §8.
func TestPublisherChange(t *testing.T) {
	var db MarketDatabase
	if err := db.Subscribe(MktSTK); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, _, err := db.AcceptSnapshot(snapshot(constants.SecurityTypeSTK, 100, 10)); err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	market, outcome, err := db.AcceptSnapshot(snapshot(constants.SecurityTypeSTK, 200, 1))
	if err != nil {
		t.Fatalf("publisher change snapshot: %v", err)
	}
	if outcome != AcceptedWithDataSourceChanged {
		t.Fatalf("want AcceptedWithDataSourceChanged, got %v", outcome)
	}
	if market != MktSTK {
		t.Fatalf("want MktSTK, got %v", market)
	}
	if db.lastApplSeqNum[MktSTK] != 1 {
		t.Fatalf("lastApplSeqNum[STK] = %d, want 1", db.lastApplSeqNum[MktSTK])
	}
}

func TestFirstPublisherNoWarning(t *testing.T) {
	var db MarketDatabase
	if err := db.Subscribe(MktSTK); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	_, outcome, err := db.AcceptSnapshot(snapshot(constants.SecurityTypeSTK, 100, 1))
	if err != nil || outcome != Accepted {
		t.Fatalf("first-ever publisher should accept silently: outcome=%v err=%v", outcome, err)
	}
}

func TestAcceptSnapshotUnsubscribedDropsSilently(t *testing.T) {
	var db MarketDatabase
	_, outcome, err := db.AcceptSnapshot(snapshot(constants.SecurityTypeSTK, 1, 1))
	if err != nil || outcome != Dropped {
		t.Fatalf("want silent drop, got outcome=%v err=%v", outcome, err)
	}
}

func TestAcceptSnapshotInvalidMktType(t *testing.T) {
	var db MarketDatabase
	_, _, err := db.AcceptSnapshot(snapshot(constants.SecurityTypeAll, 1, 1))
	if !stepcode.Is(err, stepcode.InvalidMktType) {
		t.Fatalf("want InvalidMktType, got %v", err)
	}
}

func TestUnsubscribeAllPreservesSequenceState(t *testing.T) {
	var db MarketDatabase
	if err := db.Subscribe(MktSTK); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, _, err := db.AcceptSnapshot(snapshot(constants.SecurityTypeSTK, 100, 10)); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	db.UnsubscribeAll()
	if err := db.Subscribe(MktSTK); err != nil {
		t.Fatalf("re-subscribe: %v", err)
	}
	// The same publisher resending seqnum 10 must still be rejected as
	// backflow: sequence state survives UnsubscribeAll.
	_, outcome, err := db.AcceptSnapshot(snapshot(constants.SecurityTypeSTK, 100, 10))
	if err != nil || outcome != Dropped {
		t.Fatalf("want backflow drop after resubscribe, got outcome=%v err=%v", outcome, err)
	}
}

func TestAcceptStatusUnchangedSuppressed(t *testing.T) {
	var db MarketDatabase
	if err := db.Subscribe(MktSTK); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	status := stepmsg.TradingStatus{SecurityType: constants.SecurityTypeSTK, TradingSessionID: "1"}
	_, outcome, err := db.AcceptStatus(status)
	if err != nil || outcome != Accepted {
		t.Fatalf("first status should accept: outcome=%v err=%v", outcome, err)
	}
	_, outcome, err = db.AcceptStatus(status)
	if err != nil || outcome != Dropped {
		t.Fatalf("identical status should be dropped: outcome=%v err=%v", outcome, err)
	}
}
