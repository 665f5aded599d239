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
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/assist-lab/go-sap/pkg/log"
	"github.com/assist-lab/go-sap/pkg/sample"
	"github.com/assist-lab/go-sap/pkg/srv"
)

type Writer struct {
	file *os.File
}

func NewWriter(filename string) (*Writer, error) {
	file, err := os.Create(filename)
	if err != nil {
		log.Error("Error while creating file: %s", filename)
		return nil, err
	}
	return &Writer{
		file: file,
	}, nil
}

func (w *Writer) Write(buf []byte) (int, error) {
	return w.file.Write(buf)
}

func (w *Writer) Flush() {
	w.file.Sync()
	w.file.Close()
}

// SampleHandler forwards decoded samples to an optional CSV writer. Until
// Persist is called samples are only kept in the state database.
type SampleHandler struct {
	sync.Mutex
	writer *Writer
}

func NewSampleHandler() *SampleHandler {
	return &SampleHandler{}
}

// Persist starts writing samples to a CSV file under dir.
func (h *SampleHandler) Persist(dir, filePrefix string) error {
	h.Lock()
	defer h.Unlock()
	if h.writer != nil {
		h.writer.Flush()
	}
	filename := filepath.Join(dir, fmt.Sprintf("%s_%d.csv", filePrefix, srv.Now()))
	writer, err := NewWriter(filename)
	if err != nil {
		return err
	}
	log.Info("Persisting samples to: %s", filename)
	h.writer = writer
	return nil
}

// Flush stops persisting and closes the current file.
func (h *SampleHandler) Flush() {
	h.Lock()
	defer h.Unlock()
	if h.writer != nil {
		h.writer.Flush()
		h.writer = nil
	}
}

// Handle appends one sample line: timestamp, type, values.
func (h *SampleHandler) Handle(smpl *sample.Sample) {
	h.Lock()
	defer h.Unlock()
	if h.writer == nil {
		return
	}
	values := make([]string, len(smpl.Values))
	for i, v := range smpl.Values {
		values[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	line := fmt.Sprintf("%d,%s,%s\n", smpl.Timestamp, smpl.Type, strings.Join(values, ","))
	if _, err := h.writer.Write([]byte(line)); err != nil {
		log.Error("Error while writing sample: %s", err)
	}
}
