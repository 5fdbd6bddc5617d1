// client/client.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package client

import (
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"time"

	av "github.com/mmp/airsep/aviation"
	"github.com/mmp/airsep/conflict"
	"github.com/mmp/airsep/log"
	"github.com/mmp/airsep/server"
	"github.com/mmp/airsep/sim"
	"github.com/mmp/airsep/util"
)

const DefaultTimeout = 5 * time.Second

// Client is a connection to an airsep server. Errors returned by its
// methods are mapped back to the sentinel errors of the packages that
// produced them, so errors.Is works as it would locally.
type Client struct {
	rpc     *rpc.Client
	timeout time.Duration
	lg      *log.Logger
}

// Dial connects to the server at hostname (host:port) and checks that it
// speaks the same RPC version.
func Dial(hostname string, lg *log.Logger) (*Client, error) {
	conn, err := net.DialTimeout("tcp", hostname, DefaultTimeout)
	if err != nil {
		return nil, err
	}

	cc, err := util.MakeCompressedConn(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	codec := util.MakeMessagepackClientCodec(cc)
	codec = util.MakeLoggingClientCodec(hostname, codec, lg)
	c := &Client{
		rpc:     rpc.NewClientWithCodec(codec),
		timeout: DefaultTimeout,
		lg:      lg,
	}

	start := time.Now()
	if err := c.call("Connect", server.AirsepRPCVersion, &struct{}{}); err != nil {
		c.Close()
		return nil, err
	}
	lg.Debugf("%s: connected in %s", hostname, time.Since(start))

	return c, nil
}

func (c *Client) Close() error {
	return c.rpc.Close()
}

func (c *Client) call(method string, args any, reply any) error {
	err := util.CallWithTimeout(c.rpc, "Airspace."+method, args, reply, c.timeout)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, util.ErrRPCTimeout):
		return fmt.Errorf("%s: %w", method, err)
	case errors.Is(err, rpc.ErrShutdown):
		return fmt.Errorf("%s: %w", method, server.ErrServerDisconnected)
	case util.IsRPCServerError(err):
		// Returned by the service; map it back to its sentinel.
		return server.TryDecodeError(err)
	default:
		// Broken connection, codec failure, etc.
		return fmt.Errorf("%s: %w", method, err)
	}
}

func (c *Client) Add(args server.AddArgs) error {
	return c.call("Add", &args, &struct{}{})
}

func (c *Client) AddCommercial(st sim.InitialState, info sim.CommercialInfo) error {
	return c.Add(server.AddArgs{Category: av.CategoryCommercial, State: st, Commercial: &info})
}

func (c *Client) AddFighter(st sim.InitialState, info sim.MilitaryInfo) error {
	return c.Add(server.AddArgs{Category: av.CategoryFighter, State: st, Military: &info})
}

func (c *Client) AddHelicopter(st sim.InitialState, info sim.HelicopterInfo) error {
	return c.Add(server.AddArgs{Category: av.CategoryHelicopter, State: st, Helicopter: &info})
}

func (c *Client) Remove(callsign av.Callsign) error {
	return c.call("Remove", callsign, &struct{}{})
}

func (c *Client) Get(callsign av.Callsign) (*sim.Aircraft, error) {
	var ac sim.Aircraft
	if err := c.call("Get", callsign, &ac); err != nil {
		return nil, err
	}
	return &ac, nil
}

func (c *Client) List() ([]*sim.Aircraft, error) {
	var list []*sim.Aircraft
	err := c.call("List", struct{}{}, &list)
	return list, err
}

func (c *Client) Instruct(in sim.Instruction) error {
	return c.call("Instruct", &in, &struct{}{})
}

func (c *Client) AssignHeading(callsign av.Callsign, hdg float64) error {
	return c.Instruct(sim.Instruction{Callsign: callsign, Heading: &hdg})
}

func (c *Client) AssignAltitude(callsign av.Callsign, alt float64) error {
	return c.Instruct(sim.Instruction{Callsign: callsign, Altitude: &alt})
}

func (c *Client) AssignSpeed(callsign av.Callsign, gs float64) error {
	return c.Instruct(sim.Instruction{Callsign: callsign, Speed: &gs})
}

func (c *Client) DirectTo(callsign av.Callsign, fix av.Position) error {
	return c.Instruct(sim.Instruction{Callsign: callsign, DirectTo: &fix})
}

func (c *Client) AssessAll() ([]conflict.RiskAssessment, error) {
	var r []conflict.RiskAssessment
	err := c.call("AssessAll", struct{}{}, &r)
	return r, err
}

func (c *Client) AssessPair(a, b av.Callsign) (conflict.RiskAssessment, error) {
	var ra conflict.RiskAssessment
	err := c.call("AssessPair", [2]av.Callsign{a, b}, &ra)
	return ra, err
}

func (c *Client) SetRunning(running bool) error {
	return c.call("SetRunning", running, &struct{}{})
}

func (c *Client) Step(n int) error {
	return c.call("Step", n, &struct{}{})
}

func (c *Client) Status() (server.Status, error) {
	var st server.Status
	err := c.call("Status", struct{}{}, &st)
	return st, err
}
