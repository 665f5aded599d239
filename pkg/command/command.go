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

package command

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/assist-lab/go-sap/pkg/command/ifc"
	"github.com/assist-lab/go-sap/pkg/config"
	"github.com/assist-lab/go-sap/pkg/layers"
	"github.com/assist-lab/go-sap/pkg/sample"
)

var _ ifc.ApiClient = &ApiClient{}

// DecodeHex decodes and calibrates a raw frame given as a hex string
// without talking to a server. This is the offline path used by the decode
// command.
func DecodeHex(frameHex, typeName string) (*layers.Packet, *sample.Sample, error) {
	want, err := layers.PacketTypeByName(typeName)
	if err != nil {
		return nil, nil, err
	}
	frame, err := hex.DecodeString(strings.TrimSpace(frameHex))
	if err != nil {
		return nil, nil, err
	}
	packet, err := layers.DecodeFrame(frame, want)
	if err != nil {
		return nil, nil, err
	}
	smpl, err := sample.ParseToSample(packet)
	if err != nil {
		return packet, nil, err
	}
	return packet, smpl, nil
}

// HexDump renders payload bytes the way the node engineers read them, two
// hex digits per byte separated by spaces.
func HexDump(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, " ")
}

// ExpectedTypeName returns the packet type name from the config, validated
// against the catalog.
func ExpectedTypeName(cfg *config.Config) (string, error) {
	if _, err := cfg.ExpectedType(); err != nil {
		return "", err
	}
	return cfg.Expect, nil
}
