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

// Package stepclient is the public API shell and handle registry (§4.8): a
// fixed 32-slot table mapping an integer handle to one driver.Driver, plus
// the package-level functions an application calls to drive it. The
// session/codec/acceptance logic this dispatches to lives in driver,
// stepmsg, and database; this package is, per spec.md §1, "mechanical
// dispatch".
package stepclient

import (
	"sync"
	"sync/atomic"

	"github.com/SSEDev/OrientalExpress/database"
	"github.com/SSEDev/OrientalExpress/driver"
	"github.com/SSEDev/OrientalExpress/stepcode"
)

// Mode selects which channel/driver variant a handle owns, fixed for the
// handle's lifetime (§3 "Handle").
type Mode int

const (
	TCP Mode = iota + 1
	UDP
)

// MaxHandles is the size of the fixed handle-slot table (§3 "an integer
// identifier in [1..32]").
const MaxHandles = 32

type slot struct {
	hid     int
	mode    Mode
	drv     driver.Driver
	spiSet  bool
	lastErr *stepcode.Error
}

var (
	inited int32

	regMu sync.Mutex // the "process-wide recursive mutex" of §4.8, narrowed to a plain Mutex (see DESIGN.md)
	slots [MaxHandles]slot
)

// InitLib performs idempotent, race-free one-time library setup (§5
// "Initialization atomicity": a CAS on a single integer).
func InitLib() error {
	if !atomic.CompareAndSwapInt32(&inited, 0, 1) {
		return stepcode.New(stepcode.DuplicateInited, "library already initialized")
	}
	return nil
}

// UninitLib reverses InitLib and closes every open handle.
func UninitLib() error {
	if !atomic.CompareAndSwapInt32(&inited, 1, 0) {
		return nil
	}
	regMu.Lock()
	hids := make([]int, 0, MaxHandles)
	for i := range slots {
		if slots[i].hid != 0 {
			hids = append(hids, slots[i].hid)
		}
	}
	regMu.Unlock()
	for _, hid := range hids {
		CloseHandle(hid)
	}
	return nil
}

func checkInited() error {
	if atomic.LoadInt32(&inited) == 0 {
		return stepcode.New(stepcode.Uninited, "library not initialized")
	}
	return nil
}

// OpenHandle allocates the first free slot for a driver of the given mode
// (§4.8 "Allocation scans linearly for the first free slot").
func OpenHandle(mode Mode) (int, error) {
	if err := checkInited(); err != nil {
		return 0, err
	}
	if mode != TCP && mode != UDP {
		return 0, stepcode.New(stepcode.InvalidConnMode, "mode %d not TCP or UDP", mode)
	}

	regMu.Lock()
	defer regMu.Unlock()
	for i := range slots {
		if slots[i].hid == 0 {
			hid := i + 1
			var drv driver.Driver
			if mode == TCP {
				drv = driver.NewTCP(hid)
			} else {
				drv = driver.NewUDP(hid)
			}
			slots[i] = slot{hid: hid, mode: mode, drv: drv}
			return hid, nil
		}
	}
	return 0, stepcode.New(stepcode.HidCountBeyondLimit, "all %d handles in use", MaxHandles)
}

// lookup validates hid and returns its slot index, or INVALID_HID.
func lookup(hid int) (int, error) {
	if hid < 1 || hid > MaxHandles {
		return 0, stepcode.New(stepcode.InvalidHid, "hid %d out of range", hid)
	}
	idx := hid - 1
	regMu.Lock()
	occupied := slots[idx].hid != 0
	regMu.Unlock()
	if !occupied {
		return 0, stepcode.New(stepcode.InvalidHid, "hid %d not open", hid)
	}
	return idx, nil
}

func setLastError(idx int, err error) error {
	if err == nil {
		return nil
	}
	regMu.Lock()
	if se, ok := err.(*stepcode.Error); ok {
		slots[idx].lastErr = se
	} else {
		slots[idx].lastErr = stepcode.New(stepcode.OperSystemError, "%v", err)
	}
	regMu.Unlock()
	return err
}

// CloseHandle performs an idempotent disconnect and frees hid for reuse
// (§3 "Lifecycle").
func CloseHandle(hid int) error {
	idx, err := lookup(hid)
	if err != nil {
		return err
	}
	regMu.Lock()
	drv := slots[idx].drv
	regMu.Unlock()

	drv.Close()

	regMu.Lock()
	slots[idx] = slot{}
	regMu.Unlock()
	return nil
}

// RegisterSpi installs spi as hid's callback table. Exactly one
// registration is permitted per handle.
func RegisterSpi(hid int, spi driver.SPI) error {
	idx, err := lookup(hid)
	if err != nil {
		return err
	}
	regMu.Lock()
	if slots[idx].spiSet {
		regMu.Unlock()
		return stepcode.New(stepcode.DuplicateRegistered, "hid %d already has an SPI registered", hid)
	}
	slots[idx].spiSet = true
	drv := slots[idx].drv
	regMu.Unlock()

	drv.SetSPI(spi)
	return nil
}

// Connect dials or joins addr (§6 "Address strings"): "host:port" for TCP,
// "mcAddr:mcPort;localAddr" for UDP.
func Connect(hid int, addr string) error {
	idx, err := lookup(hid)
	if err != nil {
		return err
	}
	regMu.Lock()
	drv := slots[idx].drv
	regMu.Unlock()
	return setLastError(idx, drv.Connect(addr))
}

// Disconnect tears hid's channel down. Idempotent.
func Disconnect(hid int) error {
	idx, err := lookup(hid)
	if err != nil {
		return err
	}
	regMu.Lock()
	drv := slots[idx].drv
	regMu.Unlock()
	drv.Disconnect()
	return nil
}

// Login sends a Logon (TCP) or synthesizes one locally (UDP).
func Login(hid int, username, password string, heartbeatIntl int64) error {
	idx, err := lookup(hid)
	if err != nil {
		return err
	}
	regMu.Lock()
	drv := slots[idx].drv
	regMu.Unlock()
	return setLastError(idx, drv.Login(username, password, heartbeatIntl))
}

// Logout sends a Logout (TCP) or synthesizes one locally (UDP).
func Logout(hid int, reason string) error {
	idx, err := lookup(hid)
	if err != nil {
		return err
	}
	regMu.Lock()
	drv := slots[idx].drv
	regMu.Unlock()
	return setLastError(idx, drv.Logout(reason))
}

// Subscribe registers interest in market.
func Subscribe(hid int, market database.MktType) error {
	idx, err := lookup(hid)
	if err != nil {
		return err
	}
	regMu.Lock()
	drv := slots[idx].drv
	regMu.Unlock()
	return setLastError(idx, drv.Subscribe(market))
}

// LastError returns the most recent error that Connect, Login, Logout or
// Subscribe returned for hid, or nil if none has occurred yet. This is the per-handle
// compatibility shim SPEC_FULL.md's Errors section describes in place of
// the source's thread-local error pair.
func LastError(hid int) *stepcode.Error {
	idx, err := lookup(hid)
	if err != nil {
		if se, ok := err.(*stepcode.Error); ok {
			return se
		}
		return nil
	}
	regMu.Lock()
	defer regMu.Unlock()
	return slots[idx].lastErr
}
