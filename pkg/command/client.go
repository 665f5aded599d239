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
	"errors"
	"fmt"

	"github.com/imroc/req"

	"github.com/assist-lab/go-sap/pkg/config"
	"github.com/assist-lab/go-sap/pkg/sample"
	"github.com/assist-lab/go-sap/pkg/srv/sap"
)

// ApiClient talks to a running go-sap stream server.
type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s:%d/api", cfg.IP, sap.ApiPort),
	}
}

// Samples requests the most recent samples for all packet types.
func (c *ApiClient) Samples(limit int) (map[string][]*sample.Sample, error) {
	r, err := req.Get(fmt.Sprintf("%s/samples?limit=%d", c.ApiPrefix, limit))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}
	samples := make(map[string][]*sample.Sample)
	err = r.ToJSON(&samples)
	if err != nil {
		return nil, err
	}
	return samples, nil
}

// SamplesByType requests the most recent samples of one packet type.
func (c *ApiClient) SamplesByType(typeName string, limit int) ([]*sample.Sample, error) {
	r, err := req.Get(fmt.Sprintf("%s/samples/%s?limit=%d", c.ApiPrefix, typeName, limit))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}
	var samples []*sample.Sample
	err = r.ToJSON(&samples)
	if err != nil {
		return nil, err
	}
	return samples, nil
}

// Stats requests the decode statistics counters.
func (c *ApiClient) Stats() (map[string]uint64, error) {
	r, err := req.Get(fmt.Sprintf("%s/stats", c.ApiPrefix))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}
	stats := make(map[string]uint64)
	err = r.ToJSON(&stats)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Decode sends a hex frame to the server for decoding and calibration.
func (c *ApiClient) Decode(frameHex, typeName string) (*sample.Sample, error) {
	request := &sap.DecodeRequest{
		Frame: frameHex,
		Type:  typeName,
	}
	r, err := req.Post(fmt.Sprintf("%s/decode", c.ApiPrefix), req.BodyJSON(request))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}
	smpl := &sample.Sample{}
	err = r.ToJSON(smpl)
	if err != nil {
		return nil, err
	}
	return smpl, nil
}

// Persist asks the server to start writing samples to a CSV file.
func (c *ApiClient) Persist(dir, filePrefix string) error {
	persist := &sap.Persist{
		Dir:        dir,
		FilePrefix: filePrefix,
	}
	r, err := req.Post(fmt.Sprintf("%s/persist", c.ApiPrefix), req.BodyJSON(persist))
	if err != nil {
		return err
	}
	if r.Response().StatusCode != 200 {
		return errors.New(r.Response().Status)
	}
	return nil
}

// Flush asks the server to close the current CSV file.
func (c *ApiClient) Flush() error {
	r, err := req.Get(fmt.Sprintf("%s/flush", c.ApiPrefix))
	if err != nil {
		return err
	}
	if r.Response().StatusCode != 200 {
		return errors.New(r.Response().Status)
	}
	return nil
}
