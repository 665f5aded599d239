/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package sap

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/google/gopacket"

	"github.com/assist-lab/go-sap/pkg/config"
	"github.com/assist-lab/go-sap/pkg/layers"
	"github.com/assist-lab/go-sap/pkg/log"
	"github.com/assist-lab/go-sap/pkg/sample"
	"github.com/assist-lab/go-sap/pkg/srv"
)

// SAPServer receives raw 32-byte captures over UDP from the front end
// bridge, decodes them, calibrates the payload and persists the samples.
type SAPServer struct {
	srv.Server
	state   *State
	handler *SampleHandler
	expect  layers.PacketType
}

func NewSAPServer(ctx context.Context, cfg *config.Config) (*SAPServer, error) {
	log.Info("Initializing SAP server with address: %s port: %s", cfg.SourceConfig.Address, cfg.SourceConfig.Port)

	expect, err := cfg.ExpectedType()
	if err != nil {
		return nil, err
	}

	uaddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%s", cfg.SourceConfig.Address, cfg.SourceConfig.Port))
	if err != nil {
		return nil, err
	}

	state, err := NewState(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &SAPServer{
		Server: srv.Server{
			Context: ctx,
			Config:  cfg,
			UDPAddr: uaddr,
			ChIn:    make(chan srv.InPacket),
		},
		state:   state,
		handler: NewSampleHandler(),
		expect:  expect,
	}
	return s, nil
}

func (s *SAPServer) State() *State {
	return s.state
}

func (s *SAPServer) Handler() *SampleHandler {
	return s.handler
}

func (s *SAPServer) Run() error {
	conn, err := net.ListenUDP("udp", s.UDPAddr)
	if err != nil {
		return err
	}
	defer conn.Close()
	defer s.state.Close()

	errChan := make(chan error, 1)
	buffer := make([]byte, 65536)

	// read frames from the input channel and handle them
	go func() {
		if s.expect == layers.SAPUnknown {
			source := gopacket.NewPacketSource(s, layers.SAPLayerType)
			for packet := range source.Packets() {
				s.state.IncCounter(CounterFramesReceived)
				l, ok := packet.Layer(layers.SAPLayerType).(*layers.SAPLayer)
				if !ok {
					s.state.IncCounter(CounterHeaderMisses)
					log.Debug("No SAP packet found in frame")
					continue
				}
				if addr, err := srv.GetAddr(packet); err == nil {
					log.Debug("Frame received from: %s", addr)
				}
				s.handleDecoded(l.Packet)
			}
			return
		}
		// a user supplied packet type skips the catalog search, which is
		// the only way to receive SAP_ALL since it shares its header
		// value with SAP_DOUBLE
		for in := range s.ChIn {
			s.state.IncCounter(CounterFramesReceived)
			p, err := layers.DecodeFrame(in.Data, s.expect)
			if err != nil {
				s.state.IncCounter(CounterHeaderMisses)
				log.Debug("Error while decoding frame: %s", err)
				continue
			}
			s.handleDecoded(p)
		}
	}()

	// receive data from the wire and put it on the input channel
	go func() {
		for {
			length, addr, err := conn.ReadFrom(buffer)
			if err != nil {
				errChan <- err
				return
			}

			data := make([]byte, length)
			copy(data, buffer[:length])

			ci := gopacket.CaptureInfo{
				Length:        length,
				CaptureLength: length,
				Timestamp:     time.Now(),
				AncillaryData: []interface{}{addr},
			}

			s.ChIn <- srv.InPacket{Data: data, CaptureInfo: ci}
		}
	}()

	select {
	case <-s.Context.Done():
		return s.Context.Err()
	case err = <-errChan:
		return err
	}
}

func (s *SAPServer) handleDecoded(p *layers.Packet) {
	s.state.IncCounter(CounterPacketsDecoded)
	if !p.TrailerValid {
		// the trailer is a soft check only, the packet is still used
		s.state.IncCounter(CounterTrailerMismatches)
		log.Warning("Trailer of %s packet is 0x%04X, expected 0x%04X", p.Type, p.Trailer, layers.SAPTrailer)
	}

	smpl, err := sample.ParseToSample(p)
	if err != nil {
		log.Error("Error while parsing packet: %s", err)
		return
	}
	smpl.Timestamp = srv.Now()

	log.Info("Decoded %s packet: offset: %d distance: %d values: %v",
		p.Type, p.Offset, p.HeaderDistance, smpl.Values)

	if err := s.state.AddSample(smpl); err != nil {
		log.Error("Error while storing sample: %s", err)
	}
	s.handler.Handle(smpl)
}
