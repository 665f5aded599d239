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

package layers_test

import (
	"math/bits"
	"testing"

	"github.com/google/gopacket"
	"github.com/stretchr/testify/require"

	"github.com/assist-lab/go-sap/pkg/layers"
)

// flipBit inverts one bit of the frame, counting bits the way BitStream does.
func flipBit(frame []byte, i int) {
	frame[i/8] ^= 0x80 >> (i % 8)
}

// writeWord16 places a 16-bit word at the given bit offset the way the
// transport emits it: bit order inverted within the word.
func writeWord16(frame []byte, off int, val uint16) {
	inverted := bits.Reverse16(val)
	for b := 0; b < 16; b++ {
		if inverted&(1<<(15-b)) != 0 {
			frame[(off+b)/8] |= 0x80 >> ((off + b) % 8)
		}
	}
}

// encodeFrame builds a 32-byte raw frame holding one encoded packet at the
// given bit offset: header word, payload words, trailer word.
func encodeFrame(t *testing.T, pt layers.PacketType, payload []byte, off int, trailer uint16) []byte {
	t.Helper()
	require.Equal(t, pt.PayloadLength(), len(payload))
	frame := make([]byte, layers.RawFrameSize)
	writeWord16(frame, off, pt.Header())
	for j := 0; j < len(payload)/2; j++ {
		writeWord16(frame, off+16+16*j, uint16(payload[2*j])<<8|uint16(payload[2*j+1]))
	}
	writeWord16(frame, off+16+16*(len(payload)/2), trailer)
	return frame
}

var accPayload = []byte{1, 0x89, 1, 0x23, 1, 0x34, 1, 0x1A, 1, 0x68, 0xFF, 0xFF}

func TestDecodeFrameWrongLength(t *testing.T) {
	for _, size := range []int{0, 16, 31, 33, 64} {
		_, err := layers.DecodeFrame(make([]byte, size), layers.SAPUnknown)
		require.Error(t, err, "size %d", size)
		require.IsType(t, layers.ErrFrameLength{}, err)
	}
}

func TestDecodeFrameExact(t *testing.T) {
	frame := encodeFrame(t, layers.SAPAcc, accPayload, 0, layers.SAPTrailer)
	p, err := layers.DecodeFrame(frame, layers.SAPUnknown)
	require.NoError(t, err)
	require.Equal(t, layers.SAPAcc, p.Type)
	require.Equal(t, accPayload, p.Payload)
	require.Equal(t, 0, p.Offset)
	require.Equal(t, 0, p.HeaderDistance)
	require.True(t, p.TrailerValid)
	require.Equal(t, layers.SAPTrailer, p.Trailer)
}

func TestDecodeFrameUnalignedOffset(t *testing.T) {
	frame := encodeFrame(t, layers.SAPAcc, accPayload, 5, layers.SAPTrailer)
	p, err := layers.DecodeFrame(frame, layers.SAPUnknown)
	require.NoError(t, err)
	require.Equal(t, layers.SAPAcc, p.Type)
	require.Equal(t, 5, p.Offset)
	require.Equal(t, accPayload, p.Payload)
}

func TestDecodeFrameEarliestOffsetWins(t *testing.T) {
	volPayload := []byte{1, 0x89, 1, 0x23, 1, 0x34, 1, 0x12, 1, 0x40}
	frame := encodeFrame(t, layers.SAPAcc, accPayload, 24, layers.SAPTrailer)
	other := encodeFrame(t, layers.SAPAccVol, volPayload, 80, layers.SAPTrailer)
	for i := range frame {
		frame[i] |= other[i]
	}

	p, err := layers.DecodeFrame(frame, layers.SAPUnknown)
	require.NoError(t, err)
	require.Equal(t, layers.SAPAcc, p.Type)
	require.Equal(t, 24, p.Offset)
}

func TestDecodeFrameCatalogOrderWins(t *testing.T) {
	// SAP_DOUBLE and SAP_ALL share the header value; the catalog order
	// makes SAP_DOUBLE win when no expected type is given
	frame := encodeFrame(t, layers.SAPDouble, make([]byte, 20), 16, layers.SAPTrailer)
	p, err := layers.DecodeFrame(frame, layers.SAPUnknown)
	require.NoError(t, err)
	require.Equal(t, layers.SAPDouble, p.Type)
	require.Equal(t, 16, p.Offset)
	require.Len(t, p.Payload, 20)
}

func TestDecodeFrameExpectedType(t *testing.T) {
	// the same header decodes as SAP_ALL when the caller says so
	frame := encodeFrame(t, layers.SAPDouble, make([]byte, 20), 16, layers.SAPTrailer)
	p, err := layers.DecodeFrame(frame, layers.SAPAll)
	require.NoError(t, err)
	require.Equal(t, layers.SAPAll, p.Type)
	require.Len(t, p.Payload, 10)

	// an expected type whose header is not in the frame is not found
	_, err = layers.DecodeFrame(frame, layers.SAPAcc)
	require.Error(t, err)
	require.IsType(t, layers.ErrHeaderNotFound{}, err)
}

func TestDecodeFrameOverrunCandidateSkipped(t *testing.T) {
	// at offset 128 a SAP_DOUBLE body would run past the end of the
	// frame. Its shared header still matches first in catalog order, the
	// candidate is skipped and the scan falls through to SAP_ALL at the
	// same offset. This is the one case where a scan over all types can
	// yield SAP_ALL.
	allPayload := []byte{0, 0x89, 0, 0x23, 0, 0x34, 0, 0x68, 0, 0x77}
	frame := encodeFrame(t, layers.SAPAll, allPayload, 128, layers.SAPTrailer)
	p, err := layers.DecodeFrame(frame, layers.SAPUnknown)
	require.NoError(t, err)
	require.Equal(t, layers.SAPAll, p.Type)
	require.Equal(t, 128, p.Offset)
	require.Equal(t, allPayload, p.Payload)
	require.True(t, p.TrailerValid)
}

func TestDecodeFrameUnknownWant(t *testing.T) {
	_, err := layers.DecodeFrame(make([]byte, layers.RawFrameSize), layers.PacketType(42))
	require.Error(t, err)
	require.IsType(t, layers.ErrPacketType{}, err)
}

func TestDecodeFrameBitErrorTolerance(t *testing.T) {
	frame := encodeFrame(t, layers.SAPAcc, accPayload, 0, layers.SAPTrailer)
	flipBit(frame, 0)
	p, err := layers.DecodeFrame(frame, layers.SAPUnknown)
	require.NoError(t, err)
	require.Equal(t, layers.SAPAcc, p.Type)
	require.Equal(t, 1, p.HeaderDistance)
	require.Equal(t, accPayload, p.Payload)

	flipBit(frame, 3)
	p, err = layers.DecodeFrame(frame, layers.SAPUnknown)
	require.NoError(t, err)
	require.Equal(t, 2, p.HeaderDistance)

	flipBit(frame, 7)
	_, err = layers.DecodeFrame(frame, layers.SAPUnknown)
	require.Error(t, err)
	require.IsType(t, layers.ErrHeaderNotFound{}, err)
}

func TestDecodeFrameSearchRange(t *testing.T) {
	// offset 128 is the last one searched and a SAP_ACC packet ends
	// exactly at the frame boundary there
	frame := encodeFrame(t, layers.SAPAcc, accPayload, 128, layers.SAPTrailer)
	p, err := layers.DecodeFrame(frame, layers.SAPUnknown)
	require.NoError(t, err)
	require.Equal(t, 128, p.Offset)
	require.Equal(t, accPayload, p.Payload)
}

func TestDecodeFrameTrailerMismatchIsSoft(t *testing.T) {
	frame := encodeFrame(t, layers.SAPAcc, accPayload, 0, 0xFFFE)
	p, err := layers.DecodeFrame(frame, layers.SAPUnknown)
	require.NoError(t, err)
	require.Equal(t, layers.SAPAcc, p.Type)
	require.Equal(t, accPayload, p.Payload)
	require.False(t, p.TrailerValid)
	require.EqualValues(t, 0xFFFE, p.Trailer)
}

func TestSAPLayerDecode(t *testing.T) {
	frame := encodeFrame(t, layers.SAPAcc, accPayload, 24, layers.SAPTrailer)
	packet := gopacket.NewPacket(frame, layers.SAPLayerType, gopacket.Default)
	l, ok := packet.Layer(layers.SAPLayerType).(*layers.SAPLayer)
	require.True(t, ok)
	require.Equal(t, layers.SAPAcc, l.Type)
	require.Equal(t, accPayload, l.Packet.Payload)
	require.Equal(t, accPayload, []byte(l.LayerPayload()))
}

func TestSAPLayerDecodeGarbage(t *testing.T) {
	packet := gopacket.NewPacket(make([]byte, layers.RawFrameSize), layers.SAPLayerType, gopacket.Default)
	require.Nil(t, packet.Layer(layers.SAPLayerType))
	require.Error(t, packet.ErrorLayer().Error())
}
