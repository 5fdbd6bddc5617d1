// util/rpc_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"errors"
	"net"
	"net/rpc"
	"strings"
	"testing"
	"time"

	"github.com/mmp/airsep/log"
)

type Echo struct{}

type EchoArgs struct {
	Callsigns []string
	Altitude  float64
}

type EchoResult struct {
	Joined   string
	Altitude float64
}

func (Echo) Join(args *EchoArgs, result *EchoResult) error {
	result.Joined = strings.Join(args.Callsigns, "-")
	result.Altitude = args.Altitude
	return nil
}

func (Echo) Fail(args *EchoArgs, result *EchoResult) error {
	return errors.New("no aircraft with that callsign")
}

func startEchoServer(t *testing.T, lg *log.Logger) string {
	t.Helper()

	srv := rpc.NewServer()
	if err := srv.Register(Echo{}); err != nil {
		t.Fatal(err)
	}

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { l.Close() })

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			cc, err := MakeCompressedConn(MakeLoggingConn(conn, lg))
			if err != nil {
				t.Error(err)
				return
			}
			codec := MakeLoggingServerCodec("test", MakeMessagepackServerCodec(cc, lg), lg)
			go srv.ServeCodec(codec)
		}
	}()

	return l.Addr().String()
}

func dialEcho(t *testing.T, addr string, lg *log.Logger) *rpc.Client {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	cc, err := MakeCompressedConn(conn)
	if err != nil {
		t.Fatal(err)
	}
	client := rpc.NewClientWithCodec(MakeLoggingClientCodec("test", MakeMessagepackClientCodec(cc), lg))
	t.Cleanup(func() { client.Close() })
	return client
}

func TestMessagepackRPC(t *testing.T) {
	lg := log.Discard()
	client := dialEcho(t, startEchoServer(t, lg), lg)

	var result EchoResult
	args := EchoArgs{Callsigns: []string{"AAL1", "UAL2"}, Altitude: 35000}
	if err := client.Call("Echo.Join", &args, &result); err != nil {
		t.Fatalf("Echo.Join: %v", err)
	}
	if result.Joined != "AAL1-UAL2" || result.Altitude != 35000 {
		t.Errorf("Echo.Join = %+v", result)
	}

	// An error return must leave the connection usable.
	err := client.Call("Echo.Fail", &args, &result)
	if err == nil || err.Error() != "no aircraft with that callsign" {
		t.Errorf("Echo.Fail error = %v", err)
	}
	if !IsRPCServerError(err) {
		t.Errorf("expected rpc.ServerError, got %T", err)
	}

	// Unknown methods also come back as server errors.
	if err := client.Call("Echo.Missing", &args, &result); !IsRPCServerError(err) {
		t.Errorf("unknown method error = %v", err)
	}

	result = EchoResult{}
	if err := CallWithTimeout(client, "Echo.Join", &args, &result, 5*time.Second); err != nil {
		t.Errorf("CallWithTimeout: %v", err)
	} else if result.Joined != "AAL1-UAL2" {
		t.Errorf("CallWithTimeout result = %+v", result)
	}

	if rx, tx := GetLoggedRPCBandwidth(); rx == 0 || tx == 0 {
		t.Errorf("no bandwidth logged: rx %d tx %d", rx, tx)
	}
}
