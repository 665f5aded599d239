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

package sample

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/assist-lab/go-sap/pkg/layers"
)

const epsilon = 1e-12

func TestCalibrateAcceleration(t *testing.T) {
	require.InDelta(t, 0.0, calibrateAcceleration(0), epsilon)
	require.InDelta(t, 0.016, calibrateAcceleration(1), epsilon)
	// 128 stays positive, the firmware convention
	require.InDelta(t, 2.048, calibrateAcceleration(128), epsilon)
	require.InDelta(t, -2.032, calibrateAcceleration(129), epsilon)
	require.InDelta(t, -0.016, calibrateAcceleration(255), epsilon)

	for b := 0; b < 256; b++ {
		v := calibrateAcceleration(b)
		require.GreaterOrEqual(t, v, -2.032)
		require.LessOrEqual(t, v, 2.048)
	}
}

func TestCalibrateVoltageAndECG(t *testing.T) {
	require.InDelta(t, 0.0, calibrateVoltage(0), epsilon)
	require.InDelta(t, ADCRange, calibrateVoltage(255), epsilon)
	for b := 0; b < 256; b++ {
		v := calibrateVoltage(b)
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, ADCRange)
		require.Equal(t, v, calibrateECG(b))
	}
}

func TestParseAcc(t *testing.T) {
	p := &layers.Packet{
		Type:    layers.SAPAcc,
		Payload: []byte{1, 0x89, 1, 0x23, 1, 0x34, 0, 0, 0, 0, 0, 0},
	}
	values, err := Parse(p)
	require.NoError(t, err)
	require.Len(t, values, 3)
	require.InDelta(t, calibrateAcceleration(0x89), values[0], epsilon)
	require.InDelta(t, calibrateAcceleration(0x23), values[1], epsilon)
	require.InDelta(t, calibrateAcceleration(0x34), values[2], epsilon)
}

func TestParseAll(t *testing.T) {
	p := &layers.Packet{
		Type:    layers.SAPAll,
		Payload: []byte{0, 0x89, 0, 0x23, 0, 0x34, 0, 0x68, 1, 0x77},
	}
	values, err := Parse(p)
	require.NoError(t, err)
	require.Len(t, values, 5)
	require.InDelta(t, -1.904, values[0], epsilon)
	require.InDelta(t, 0.56, values[1], epsilon)
	require.InDelta(t, 0.832, values[2], epsilon)
	require.InDelta(t, float64(0x68)/255.0*ADCRange, values[3], epsilon)
	require.InDelta(t, float64(0x77)/255.0*ADCRange, values[4], epsilon)
}

func TestParseAccVol(t *testing.T) {
	// voltage sample 0xFF split as 6 MSBs + 2 LSBs; the high bits of
	// payload[7] are masked off
	p := &layers.Packet{
		Type:    layers.SAPAccVol,
		Payload: []byte{1, 0x10, 1, 0x20, 1, 0x30, 1, 0xFF, 1, 0xC0},
	}
	values, err := Parse(p)
	require.NoError(t, err)
	require.Len(t, values, 4)
	require.InDelta(t, ADCRange, values[3], epsilon)
}

func TestParseAccEcg(t *testing.T) {
	// ECG sample 0x68 split into 6 MSBs in payload[7] and 2 LSBs at the
	// top of payload[9]
	data := 0x68
	p := &layers.Packet{
		Type:    layers.SAPAccEcg,
		Payload: []byte{1, 0x89, 1, 0x23, 1, 0x34, 1, byte(data >> 2), 1, byte(data << 6)},
	}
	values, err := Parse(p)
	require.NoError(t, err)
	require.Len(t, values, 4)
	require.InDelta(t, calibrateAcceleration(0x89), values[0], epsilon)
	require.InDelta(t, calibrateAcceleration(0x23), values[1], epsilon)
	require.InDelta(t, calibrateAcceleration(0x34), values[2], epsilon)
	require.InDelta(t, float64(data)/255.0*ADCRange, values[3], epsilon)
}

func TestParseAccEcgKeepsUnmaskedHighBits(t *testing.T) {
	// unlike SAP_ACC_VOL the composition does not mask payload[7], so a
	// byte with high bits set yields a value above the ADC range. The
	// firmware never sets those bits; the unmasked form is kept as is.
	p := &layers.Packet{
		Type:    layers.SAPAccEcg,
		Payload: []byte{1, 0, 1, 0, 1, 0, 1, 0xFF, 1, 0xC0},
	}
	values, err := Parse(p)
	require.NoError(t, err)
	require.InDelta(t, 1023.0/255.0*ADCRange, values[3], epsilon)
}

func TestParseDoubleCorrection(t *testing.T) {
	// the x acceleration byte lost bits in the first copy and survives
	// in the second; OR-ing the copies recovers it
	payload := make([]byte, 20)
	payload[1] = 0x80 // dropped bits of 0x89
	payload[6] = 0x09 // second copy retains them
	payload[3] = 0x23
	payload[5] = 0x34
	payload[7] = 0x68
	payload[9] = 0x77
	p := &layers.Packet{Type: layers.SAPDouble, Payload: payload}

	values, err := Parse(p)
	require.NoError(t, err)
	require.Len(t, values, 5)
	require.InDelta(t, calibrateAcceleration(0x89), values[0], epsilon)
	require.InDelta(t, calibrateAcceleration(0x23), values[1], epsilon)
	require.InDelta(t, calibrateAcceleration(0x34), values[2], epsilon)
	require.InDelta(t, calibrateVoltage(0x68), values[3], epsilon)
	require.InDelta(t, calibrateECG(0x77), values[4], epsilon)
}

func TestParseDoubleDoesNotMutatePayload(t *testing.T) {
	payload := make([]byte, 20)
	payload[1] = 0x80
	payload[6] = 0x09
	p := &layers.Packet{Type: layers.SAPDouble, Payload: payload}
	_, err := Parse(p)
	require.NoError(t, err)
	require.EqualValues(t, 0x80, payload[1])
}

func TestParseUnknownType(t *testing.T) {
	p := &layers.Packet{Type: layers.SAPUnknown, Payload: make([]byte, 10)}
	values, err := Parse(p)
	require.Error(t, err)
	require.IsType(t, ErrUnknownPacketType{}, err)
	require.Nil(t, values)
}

func TestParseToSample(t *testing.T) {
	p := &layers.Packet{
		Type:         layers.SAPAcc,
		Payload:      []byte{1, 0x10, 1, 0x20, 1, 0x30, 0, 0, 0, 0, 0, 0},
		Offset:       42,
		TrailerValid: false,
	}
	smpl, err := ParseToSample(p)
	require.NoError(t, err)
	require.Equal(t, "SAP_ACC", smpl.Type)
	require.Equal(t, 42, smpl.Offset)
	require.False(t, smpl.TrailerValid)
	require.Len(t, smpl.Values, 3)
}
