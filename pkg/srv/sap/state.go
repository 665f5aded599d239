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
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"github.com/assist-lab/go-sap/pkg/config"
	"github.com/assist-lab/go-sap/pkg/layers"
	"github.com/assist-lab/go-sap/pkg/log"
	"github.com/assist-lab/go-sap/pkg/sample"
)

const (
	SampleBucketPrefix = "samples_"
	StatsBucket        = "stats"

	CounterFramesReceived    = "frames_received"
	CounterPacketsDecoded    = "packets_decoded"
	CounterHeaderMisses      = "header_misses"
	CounterTrailerMismatches = "trailer_mismatches"
)

type State struct {
	context.Context
	DB *bbolt.DB
}

func NewState(ctx context.Context, cfg *config.Config) (*State, error) {
	db, err := bbolt.Open(cfg.DBPath(), 0600, nil)
	if err != nil {
		return nil, err
	}
	s := &State{
		Context: ctx,
		DB:      db,
	}
	if err := s.createBuckets(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close ...
func (s *State) Close() {
	s.DB.Close()
}

func sampleBucketName(typeName string) string {
	return fmt.Sprintf("%s%s", SampleBucketPrefix, typeName)
}

func (s *State) createBuckets() error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		for _, t := range layers.PacketTypes {
			if _, err := tx.CreateBucketIfNotExists([]byte(sampleBucketName(t.String()))); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucketIfNotExists([]byte(StatsBucket))
		return err
	})
}

// AddSample stores a calibrated sample keyed by its timestamp.
func (s *State) AddSample(smpl *sample.Sample) error {
	log.Debug("Adding sample: type: %s timestamp: %d", smpl.Type, smpl.Timestamp)
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(sampleBucketName(smpl.Type)))
		if b == nil {
			return ErrBucketNotFound{Name: sampleBucketName(smpl.Type)}
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, smpl.Timestamp)
		value, err := yaml.Marshal(smpl)
		if err != nil {
			return err
		}
		return b.Put(key, value)
	})
}

// GetSamples returns up to limit most recent samples of one packet type.
func (s *State) GetSamples(typeName string, limit int) ([]*sample.Sample, error) {
	var samples []*sample.Sample
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(sampleBucketName(typeName)))
		if b == nil {
			return ErrBucketNotFound{Name: sampleBucketName(typeName)}
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil && len(samples) < limit; k, v = c.Prev() {
			smpl := &sample.Sample{}
			if err := yaml.Unmarshal(v, smpl); err != nil {
				log.Error("Error while unmarshalling sample: %s", err)
				return err
			}
			samples = append(samples, smpl)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return samples, nil
}

// GetAllSamples returns up to limit most recent samples per packet type.
func (s *State) GetAllSamples(limit int) (map[string][]*sample.Sample, error) {
	result := make(map[string][]*sample.Sample)
	for _, t := range layers.PacketTypes {
		samples, err := s.GetSamples(t.String(), limit)
		if err != nil {
			return nil, err
		}
		if len(samples) > 0 {
			result[t.String()] = samples
		}
	}
	return result, nil
}

// IncCounter bumps one of the decode statistics counters.
func (s *State) IncCounter(name string) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(StatsBucket))
		if b == nil {
			return ErrBucketNotFound{Name: StatsBucket}
		}
		var count uint64
		if v := b.Get([]byte(name)); v != nil {
			count = binary.BigEndian.Uint64(v)
		}
		value := make([]byte, 8)
		binary.BigEndian.PutUint64(value, count+1)
		return b.Put([]byte(name), value)
	})
}

// GetStats returns all decode statistics counters.
func (s *State) GetStats() (map[string]uint64, error) {
	stats := make(map[string]uint64)
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(StatsBucket))
		if b == nil {
			return ErrBucketNotFound{Name: StatsBucket}
		}
		return b.ForEach(func(k, v []byte) error {
			stats[string(k)] = binary.BigEndian.Uint64(v)
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return stats, nil
}
