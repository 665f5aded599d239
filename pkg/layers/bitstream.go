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

// BitStream is a bit addressable view over a byte buffer. Bit 0 of the
// stream is the most significant bit of byte 0, bit 1 the next one and so
// on. This is the order in which the front end shifts bits onto the wire.
type BitStream struct {
	data []byte
}

func NewBitStream(data []byte) BitStream {
	return BitStream{data: data}
}

// Len returns the number of bits in the stream.
func (s BitStream) Len() int {
	return len(s.data) * 8
}

// Bit returns bit i of the stream, 0 or 1. The caller is responsible for
// keeping i in range.
func (s BitStream) Bit(i int) byte {
	return (s.data[i/8] >> (7 - i%8)) & 1
}

// Uint16 reads a 16-bit window starting at bit offset off, MSB first, i.e.
// in the stream's own bit order.
func (s BitStream) Uint16(off int) (uint16, error) {
	if off < 0 || off+16 > s.Len() {
		return 0, ErrBitRange{Offset: off, Width: 16, Size: s.Len()}
	}
	var w uint16
	for i := 0; i < 16; i++ {
		w = w<<1 | uint16(s.Bit(off+i))
	}
	return w, nil
}

// HammingDistance counts the differing bits between the 16-bit window at
// off and pattern. The pattern must already be expressed in the stream's
// bit order, see PacketType.HeaderPattern.
func (s BitStream) HammingDistance(off int, pattern uint16) (int, error) {
	w, err := s.Uint16(off)
	if err != nil {
		return 0, err
	}
	return bits.OnesCount16(w ^ pattern), nil
}

// Word16 reads the 16-bit window at off and interprets it with bit 0 of
// the window as the least significant bit of the result. The transport
// inverts the bit order within every 16-bit word, so this read undoes the
// inversion and recovers the original word value.
func (s BitStream) Word16(off int) (uint16, error) {
	w, err := s.Uint16(off)
	if err != nil {
		return 0, err
	}
	return bits.Reverse16(w), nil
}
