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

// Command stepmd-shell is an interactive demo client over the stepclient
// public API: open a handle, connect, log in, subscribe, and watch the
// SPI callbacks as they arrive. It exists to exercise the library end to
// end, not as a production operator console.
package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/SSEDev/OrientalExpress/database"
	"github.com/SSEDev/OrientalExpress/driver"
	"github.com/SSEDev/OrientalExpress/stepclient"
	"github.com/SSEDev/OrientalExpress/stepcode"

	"github.com/chzyer/readline"
)

func main() {
	if err := stepclient.InitLib(); err != nil {
		log.Fatalf("InitLib: %v", err)
	}
	defer stepclient.UninitLib()

	sh := &shell{}
	sh.run()
}

// shell holds the one handle this demo drives at a time. A real operator
// console would track several; this one keeps the surface small.
type shell struct {
	hid int
}

func (s *shell) run() {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("open", readline.PcItem("tcp"), readline.PcItem("udp")),
		readline.PcItem("connect"),
		readline.PcItem("login"),
		readline.PcItem("subscribe", readline.PcItem("all"), readline.PcItem("stk"), readline.PcItem("dev")),
		readline.PcItem("logout"),
		readline.PcItem("disconnect"),
		readline.PcItem("close"),
		readline.PcItem("lasterror"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "stepmd> ",
		HistoryFile:     "/tmp/stepmd_history",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Printf("failed to create readline: %v", err)
		return
	}
	defer rl.Close()

	s.displayHelp()
	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) == 0 {
			continue
		}

		switch strings.ToLower(parts[0]) {
		case "open":
			s.handleOpen(parts)
		case "connect":
			s.handleConnect(parts)
		case "login":
			s.handleLogin(parts)
		case "subscribe":
			s.handleSubscribe(parts)
		case "logout":
			s.handleLogout(parts)
		case "disconnect":
			s.handleDisconnect()
		case "close":
			s.handleClose()
		case "lasterror":
			s.handleLastError()
		case "help":
			s.displayHelp()
		case "exit", "quit":
			return
		default:
			fmt.Println("Unknown command. Type 'help' for available commands.")
		}
	}
}

func (s *shell) displayHelp() {
	fmt.Print(`Commands:
  open tcp|udp               - allocate a handle of the given transport
  connect <addr>             - TCP: host:port   UDP: mcAddr:mcPort;localAddr
  login <user> <pass> <hb>   - send Logon with heartbeat interval hb seconds
  subscribe all|stk|dev      - subscribe the current handle to a market
  logout [reason]            - send Logout
  disconnect                 - tear the channel down
  close                      - disconnect and free the handle
  lasterror                  - print the last error the handle recorded
  help                       - this text
  exit                       - quit
`)
}

func (s *shell) handleOpen(parts []string) {
	if len(parts) < 2 {
		fmt.Println("Usage: open tcp|udp")
		return
	}
	var mode stepclient.Mode
	switch strings.ToLower(parts[1]) {
	case "tcp":
		mode = stepclient.TCP
	case "udp":
		mode = stepclient.UDP
	default:
		fmt.Println("mode must be tcp or udp")
		return
	}
	hid, err := stepclient.OpenHandle(mode)
	if err != nil {
		fmt.Printf("open failed: %v\n", err)
		return
	}
	if err := stepclient.RegisterSpi(hid, &shellSPI{hid: hid}); err != nil {
		fmt.Printf("RegisterSpi failed: %v\n", err)
		stepclient.CloseHandle(hid)
		return
	}
	s.hid = hid
	fmt.Printf("opened hid=%d\n", hid)
}

func (s *shell) handleConnect(parts []string) {
	if len(parts) < 2 {
		fmt.Println("Usage: connect <addr>")
		return
	}
	if err := stepclient.Connect(s.hid, parts[1]); err != nil {
		fmt.Printf("connect failed: %v\n", err)
	}
}

func (s *shell) handleLogin(parts []string) {
	if len(parts) < 4 {
		fmt.Println("Usage: login <user> <pass> <heartbeatIntl>")
		return
	}
	hb, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		fmt.Println("heartbeatIntl must be an integer number of seconds")
		return
	}
	if err := stepclient.Login(s.hid, parts[1], parts[2], hb); err != nil {
		fmt.Printf("login failed: %v\n", err)
	}
}

func (s *shell) handleSubscribe(parts []string) {
	if len(parts) < 2 {
		fmt.Println("Usage: subscribe all|stk|dev")
		return
	}
	var market database.MktType
	switch strings.ToLower(parts[1]) {
	case "all":
		market = database.MktAll
	case "stk":
		market = database.MktSTK
	case "dev":
		market = database.MktDEV
	default:
		fmt.Println("market must be all, stk, or dev")
		return
	}
	if err := stepclient.Subscribe(s.hid, market); err != nil {
		fmt.Printf("subscribe failed: %v\n", err)
	}
}

func (s *shell) handleLogout(parts []string) {
	reason := ""
	if len(parts) > 1 {
		reason = strings.Join(parts[1:], " ")
	}
	if err := stepclient.Logout(s.hid, reason); err != nil {
		fmt.Printf("logout failed: %v\n", err)
	}
}

func (s *shell) handleDisconnect() {
	if err := stepclient.Disconnect(s.hid); err != nil {
		fmt.Printf("disconnect failed: %v\n", err)
	}
}

func (s *shell) handleClose() {
	if err := stepclient.CloseHandle(s.hid); err != nil {
		fmt.Printf("close failed: %v\n", err)
		return
	}
	s.hid = 0
}

func (s *shell) handleLastError() {
	if e := stepclient.LastError(s.hid); e != nil {
		fmt.Printf("%s: %s\n", e.Code, e.Detail)
		return
	}
	fmt.Println("no error recorded")
}

// shellSPI prints every callback as it arrives, so the demo doubles as a
// trace of the driver's behavior against a live or simulated venue.
type shellSPI struct {
	hid int
}

func (sp *shellSPI) Connected(hid int) {
	fmt.Printf("[%d] connected\n", hid)
}

func (sp *shellSPI) Disconnected(hid int, code stepcode.Code, reason string) {
	fmt.Printf("[%d] disconnected code=%s reason=%q\n", hid, code, reason)
}

func (sp *shellSPI) LoginRsp(hid int, heartbeatIntl int64, code stepcode.Code, reason string) {
	fmt.Printf("[%d] login response code=%s hb=%ds reason=%q\n", hid, code, heartbeatIntl, reason)
}

func (sp *shellSPI) LogoutRsp(hid int, code stepcode.Code, reason string) {
	fmt.Printf("[%d] logout response code=%s reason=%q\n", hid, code, reason)
}

func (sp *shellSPI) MktDataSubRsp(hid int, market database.MktType, code stepcode.Code, reason string) {
	fmt.Printf("[%d] subscribe response market=%s code=%s reason=%q\n", hid, market.SecurityType(), code, reason)
}

func (sp *shellSPI) MktDataArrived(hid int, snapshot driver.MktData) {
	fmt.Printf("[%d] snapshot time=%s market=%s applID=%d applSeqNum=%d data=%q\n",
		hid, snapshot.MktTime, snapshot.MktType.SecurityType(), snapshot.ApplID, snapshot.ApplSeqNum, snapshot.MdData)
}

func (sp *shellSPI) MktStatusChanged(hid int, status driver.MktStatus) {
	fmt.Printf("[%d] status market=%s sessionID=%s\n", hid, status.MktType.SecurityType(), status.MktStatus)
}

func (sp *shellSPI) EventOccurred(hid int, level driver.Level, code stepcode.Code, text string) {
	fmt.Printf("[%d] event level=%d code=%s text=%s\n", hid, level, code, text)
}
