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

package layers

import (
	"fmt"

	"github.com/google/gopacket"
	gplayers "github.com/google/gopacket/layers"

	"github.com/assist-lab/go-sap/pkg/log"
)

const (
	// SAPLayerNum identifies the layer
	SAPLayerNum = 2001
	// RawFrameSize is the fixed size of one raw capture from the front end.
	// The SPI transfer always delivers 32 bytes no matter which packet is
	// inside, the rest of the buffer is preamble and junk bits.
	RawFrameSize = 32
	// HeaderSearchRange is the last bit offset at which a header search is
	// attempted, inclusive
	HeaderSearchRange = 128
	// HeaderThreshold is the number of bit errors tolerated when matching a
	// header pattern. 0 would demand exact equality. Values above 2 start
	// producing false matches on noisy links, so 2 is compiled in.
	HeaderThreshold = 2
	// WordLength is the size of one transport word. The link inverts the
	// bit order within every word of this size.
	WordLength = 16
)

// Packet is one decoded SAP packet: the recognized type and the payload
// bytes between header and trailer. A mismatching trailer does not reject
// the packet, it is only recorded in TrailerValid so the caller can count
// or log it.
type Packet struct {
	Type PacketType
	// Payload holds PayloadLength() bytes reassembled from the inverted
	// transport words
	Payload []byte
	// Offset is the bit offset of the matched header within the raw frame
	Offset int
	// HeaderDistance is the Hamming distance of the matched header window,
	// 0 for a clean match
	HeaderDistance int
	Trailer        uint16
	TrailerValid   bool
}

// DecodeFrame searches a raw 32-byte frame for a packet header and
// reconstructs the payload behind it. When want is SAPUnknown all known
// headers are tried at every offset, in PacketTypes order; the offset is
// the outer loop, so an earlier offset always wins over a later one and
// among equal offsets the catalog order wins. A candidate whose payload or
// trailer would run past the end of the frame is skipped and the search
// continues. A want outside the catalog is rejected.
func DecodeFrame(data []byte, want PacketType) (*Packet, error) {
	if len(data) != RawFrameSize {
		return nil, ErrFrameLength{Length: len(data)}
	}

	candidates := PacketTypes
	if want != SAPUnknown {
		if _, ok := packetTypeSpecs[want]; !ok {
			return nil, ErrPacketType{Name: fmt.Sprintf("%d", int(want))}
		}
		candidates = []PacketType{want}
	}

	stream := NewBitStream(data)
	for off := 0; off <= HeaderSearchRange; off++ {
		for _, t := range candidates {
			dist, err := stream.HammingDistance(off, t.HeaderPattern())
			if err != nil {
				continue
			}
			if dist > HeaderThreshold {
				continue
			}
			p, err := extract(stream, off, t)
			if err != nil {
				// matched header too close to the end of the frame to
				// hold a whole packet, keep searching
				continue
			}
			p.HeaderDistance = dist
			return p, nil
		}
	}
	return nil, ErrHeaderNotFound{Want: want}
}

// extract reassembles the payload and trailer behind a header matched at
// bit offset off. Every transport word carries two payload bytes: the high
// byte lands at the even index, the low byte right after it.
func extract(stream BitStream, off int, t PacketType) (*Packet, error) {
	payload := make([]byte, t.PayloadLength())
	cursor := off + WordLength
	for j := 0; j < t.PayloadLength()/2; j++ {
		word, err := stream.Word16(cursor + j*WordLength)
		if err != nil {
			return nil, err
		}
		payload[2*j] = byte(word >> 8)
		payload[2*j+1] = byte(word)
	}
	trailer, err := stream.Word16(cursor + t.PayloadLength()/2*WordLength)
	if err != nil {
		return nil, err
	}
	return &Packet{
		Type:         t,
		Payload:      payload,
		Offset:       off,
		Trailer:      trailer,
		TrailerValid: trailer == SAPTrailer,
	}, nil
}

type SAPLayer struct {
	gplayers.BaseLayer
	*Packet
}

var SAPLayerType = gopacket.RegisterLayerType(SAPLayerNum,
	gopacket.LayerTypeMetadata{Name: "SAPLayerType", Decoder: gopacket.DecodeFunc(decodeSAPLayer)})

func (l *SAPLayer) LayerType() gopacket.LayerType {
	return SAPLayerType
}

// DecodeFromBytes attempts to decode the byte slice as a raw SAP frame
func (l *SAPLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < RawFrameSize {
		df.SetTruncated()
		return ErrFrameLength{Length: len(data)}
	}
	p, err := DecodeFrame(data, SAPUnknown)
	if err != nil {
		return err
	}
	l.Packet = p
	l.BaseLayer = gplayers.BaseLayer{
		Contents: data,
		Payload:  p.Payload,
	}
	return nil
}

func (l *SAPLayer) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

func decodeSAPLayer(data []byte, p gopacket.PacketBuilder) error {
	l := &SAPLayer{}
	err := l.DecodeFromBytes(data, p)
	if err != nil {
		log.Debug("Error while decoding SAP layer: %s", err)
		return err
	}
	p.AddLayer(l)
	return p.NextDecoder(l.NextLayerType())
}
