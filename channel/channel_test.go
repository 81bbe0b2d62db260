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

package channel

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/SSEDev/OrientalExpress/stepcode"
)

type recordingListener struct {
	mu          sync.Mutex
	connected   int
	disconnects int
	received    [][]byte
	timeouts    int
	notify      chan struct{}
}

func (l *recordingListener) Connected() {
	l.mu.Lock()
	l.connected++
	l.mu.Unlock()
	l.signal()
}

func (l *recordingListener) Disconnected(err error) {
	l.mu.Lock()
	l.disconnects++
	l.mu.Unlock()
	l.signal()
}

func (l *recordingListener) Received(buf []byte, n int) bool {
	l.mu.Lock()
	cp := append([]byte(nil), buf[:n]...)
	l.received = append(l.received, cp)
	l.mu.Unlock()
	l.signal()
	return true
}

func (l *recordingListener) RecvTimeout() {
	l.mu.Lock()
	l.timeouts++
	l.mu.Unlock()
	l.signal()
}

func (l *recordingListener) ControlFired(ev ControlEvent) {
	l.signal()
}

func (l *recordingListener) signal() {
	if l.notify != nil {
		select {
		case l.notify <- struct{}{}:
		default:
		}
	}
}

func (l *recordingListener) waitConnected(t *testing.T, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		l.mu.Lock()
		n := l.connected
		l.mu.Unlock()
		if n > 0 {
			return
		}
		select {
		case <-l.notify:
		case <-deadline:
			t.Fatal("timed out waiting for Connected callback")
		}
	}
}

func TestParseUDPAddressValid(t *testing.T) {
	got, err := parseUDPAddress("239.1.1.1:12345;10.0.0.5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.mcPort != 12345 {
		t.Fatalf("mcPort = %d, want 12345", got.mcPort)
	}
	if got.mcAddr.String() != "239.1.1.1" || got.localAddr.String() != "10.0.0.5" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseUDPAddressMissingSemicolon(t *testing.T) {
	_, err := parseUDPAddress("239.1.1.1:12345")
	if !stepcode.Is(err, stepcode.InvalidAddress) {
		t.Fatalf("want InvalidAddress, got %v", err)
	}
}

func TestParseUDPAddressBadIP(t *testing.T) {
	_, err := parseUDPAddress("not-an-ip:12345;10.0.0.5")
	if !stepcode.Is(err, stepcode.InvalidAddress) {
		t.Fatalf("want InvalidAddress, got %v", err)
	}
}

func TestSendRequiresTCPChannel(t *testing.T) {
	ch := NewUDP("239.1.1.1:1;10.0.0.1", &recordingListener{})
	if err := ch.Send([]byte("x")); !stepcode.Is(err, stepcode.InvalidOperation) {
		t.Fatalf("want InvalidOperation, got %v", err)
	}
}

func TestPostControlRequiresUDPChannel(t *testing.T) {
	ch := NewTCP("127.0.0.1:1", &recordingListener{})
	if err := ch.PostControl(ControlEvent{Kind: ControlLogin}); !stepcode.Is(err, stepcode.InvalidOperation) {
		t.Fatalf("want InvalidOperation, got %v", err)
	}
}

func TestTCPChannelConnectsAndReceives(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		conn.Write([]byte("hello"))
		buf := make([]byte, 16)
		conn.Read(buf)
	}()

	listener := &recordingListener{notify: make(chan struct{}, 8)}
	ch := NewTCP(ln.Addr().String(), listener)
	ch.Startup()
	listener.waitConnected(t, 2*time.Second)

	if err := ch.Send([]byte("ping")); err != nil {
		t.Fatalf("send: %v", err)
	}

	ch.Shutdown()
	ch.JoinChannel()
	<-serverDone

	if ch.Status() != Stopped {
		t.Fatalf("status = %v, want Stopped", ch.Status())
	}
	listener.mu.Lock()
	received := listener.received
	listener.mu.Unlock()
	if len(received) == 0 || string(received[0]) != "hello" {
		t.Fatalf("received = %q, want first read %q", received, "hello")
	}
}
