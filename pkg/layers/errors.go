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
	"fmt"
)

// ErrFrameLength returned when the raw frame is not exactly RawFrameSize bytes
type ErrFrameLength struct {
	Length int
}

func (e ErrFrameLength) Error() string {
	return fmt.Sprintf("Wrong raw frame length: %d, must be %d", e.Length, RawFrameSize)
}

// ErrHeaderNotFound returned when no header matched anywhere in the search range
type ErrHeaderNotFound struct {
	Want PacketType
}

func (e ErrHeaderNotFound) Error() string {
	if e.Want == SAPUnknown {
		return "No known packet header found in frame"
	}
	return fmt.Sprintf("Header of %s not found in frame", e.Want)
}

// ErrBitRange returned when a bit window would run past the end of the stream
type ErrBitRange struct {
	Offset int
	Width  int
	Size   int
}

func (e ErrBitRange) Error() string {
	return fmt.Sprintf("Bit window [%d:%d] out of range, stream is %d bits", e.Offset, e.Offset+e.Width, e.Size)
}

// ErrPacketType returned when a packet type name is not recognized
type ErrPacketType struct {
	Name string
}

func (e ErrPacketType) Error() string {
	return fmt.Sprintf("Unknown packet type: %s", e.Name)
}
