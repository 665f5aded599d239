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
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/assist-lab/go-sap/pkg/log"
)

// Sample is one set of calibrated measurements recovered from a packet.
// Values is ordered: acceleration x, y, z first, then voltage and ECG when
// the packet type carries them.
type Sample struct {
	Type         string    `json:"Type"`
	Values       []float64 `json:"Values"`
	Offset       int       `json:"Offset,omitempty"`
	TrailerValid bool      `json:"TrailerValid"`
	Timestamp    uint64    `json:"Timestamp,omitempty"`
}

func (s *Sample) String() string {
	result, err := yaml.Marshal(s)
	if err != nil {
		log.Info("Error occured while marshaling sample, %s", err)
		return ""
	}
	return fmt.Sprintf("---\n%s", string(result))
}
