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
	"math/bits"
)

// PacketType identifies one of the SAP node packet formats. Each format has
// a 16-bit header which is searched for in the raw bit stream and a fixed
// frame length. The trailer is 0xFFFF for every format, so it is kept as a
// single constant instead of per-type state.
type PacketType int

const (
	// SAPUnknown means no particular type, e.g. decode should try all of them
	SAPUnknown PacketType = iota
	// SAPAcc carries acceleration only
	// Format: 5322-00AX-00AY-00AZ-0000-0000-0000-FFFF (16 bytes)
	SAPAcc
	// SAPAccVol carries acceleration and super-capacitor voltage
	// Format: 5C22-01AX-01AY-01AZ-01VA-01VB-FFFF (14 bytes)
	// VA = 00 + 6 MSBs of the voltage sample
	// VB = 2 LSBs of the voltage sample + 000000
	SAPAccVol
	// SAPAccEcg carries acceleration and ECG, same packing as SAPAccVol
	SAPAccEcg
	// SAPDouble carries the SAPAll set twice for error correction
	SAPDouble
	// SAPAll carries acceleration, voltage and ECG
	// Format: 5C2D-00AX-00AY-00AZ-00Vo-01EG-FFFF (14 bytes)
	SAPAll
)

// SAPTrailer closes every packet regardless of its type.
const SAPTrailer uint16 = 0xFFFF

// PacketTypes lists all concrete types in declaration order. The order
// matters: when decode searches for all headers it tries them in this order
// and the first match wins.
var PacketTypes = []PacketType{SAPAcc, SAPAccVol, SAPAccEcg, SAPDouble, SAPAll}

type packetTypeSpec struct {
	name        string
	header      uint16
	frameLength int
}

// SAPAll and SAPDouble share the header value 0x5C2D. Header search alone
// can not tell them apart; the frame length used during extraction and the
// user supplied expected type are the only discriminators.
var packetTypeSpecs = map[PacketType]packetTypeSpec{
	SAPAcc:    {name: "SAP_ACC", header: 0x5322, frameLength: 16},
	SAPAccVol: {name: "SAP_ACC_VOL", header: 0x5C22, frameLength: 14},
	SAPAccEcg: {name: "SAP_ACC_ECG", header: 0x532D, frameLength: 14},
	SAPDouble: {name: "SAP_DOUBLE", header: 0x5C2D, frameLength: 24},
	SAPAll:    {name: "SAP_ALL", header: 0x5C2D, frameLength: 14},
}

func (t PacketType) String() string {
	spec, ok := packetTypeSpecs[t]
	if !ok {
		return "SAP_UNKNOWN"
	}
	return spec.name
}

// Header returns the 16-bit header value of the type.
func (t PacketType) Header() uint16 {
	return packetTypeSpecs[t].header
}

// FrameLength returns the total encoded length in bytes including the
// header and the trailer.
func (t PacketType) FrameLength() int {
	return packetTypeSpecs[t].frameLength
}

// PayloadLength is always derived from the frame length so the two can not
// drift apart.
func (t PacketType) PayloadLength() int {
	return packetTypeSpecs[t].frameLength - 4
}

// HeaderPattern returns the header bits in the order they appear in the raw
// stream. The radio front end inverts the bit order within each 16-bit
// word, so the pattern to search for is the header emitted LSB first.
func (t PacketType) HeaderPattern() uint16 {
	return bits.Reverse16(packetTypeSpecs[t].header)
}

// PacketTypeByName maps the wire format name (e.g. "SAP_ACC_VOL") back to
// its PacketType. An empty string means SAPUnknown, i.e. search for all.
func PacketTypeByName(name string) (PacketType, error) {
	if name == "" {
		return SAPUnknown, nil
	}
	for _, t := range PacketTypes {
		if packetTypeSpecs[t].name == name {
			return t, nil
		}
	}
	return SAPUnknown, ErrPacketType{Name: name}
}
