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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/assist-lab/go-sap/pkg/layers"
)

func TestBitStreamBitOrdering(t *testing.T) {
	s := layers.NewBitStream([]byte{0x80, 0x01})
	require.Equal(t, 16, s.Len())
	require.EqualValues(t, 1, s.Bit(0))
	require.EqualValues(t, 0, s.Bit(1))
	require.EqualValues(t, 0, s.Bit(7))
	require.EqualValues(t, 0, s.Bit(8))
	require.EqualValues(t, 1, s.Bit(15))
}

func TestBitStreamUint16(t *testing.T) {
	s := layers.NewBitStream([]byte{0xAB, 0xCD, 0xEF})
	w, err := s.Uint16(0)
	require.NoError(t, err)
	require.EqualValues(t, 0xABCD, w)

	// unaligned read straddles byte boundaries
	w, err = s.Uint16(4)
	require.NoError(t, err)
	require.EqualValues(t, 0xBCDE, w)

	_, err = s.Uint16(9)
	require.Error(t, err)
	require.IsType(t, layers.ErrBitRange{}, err)

	_, err = s.Uint16(-1)
	require.Error(t, err)
}

func TestBitStreamWord16(t *testing.T) {
	// 0x44CA is the SAP_ACC header 0x5322 with the bit order of each
	// 16-bit word inverted, which is how it arrives from the link
	s := layers.NewBitStream([]byte{0x44, 0xCA})
	w, err := s.Word16(0)
	require.NoError(t, err)
	require.EqualValues(t, 0x5322, w)
}

func TestBitStreamHammingDistance(t *testing.T) {
	s := layers.NewBitStream([]byte{0x44, 0xCA})
	d, err := s.HammingDistance(0, 0x44CA)
	require.NoError(t, err)
	require.Equal(t, 0, d)

	d, err = s.HammingDistance(0, 0x44CB)
	require.NoError(t, err)
	require.Equal(t, 1, d)

	d, err = s.HammingDistance(0, 0xBB35)
	require.NoError(t, err)
	require.Equal(t, 16, d)

	_, err = s.HammingDistance(1, 0x44CA)
	require.Error(t, err)
}
