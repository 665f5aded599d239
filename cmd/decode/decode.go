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

package decode

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assist-lab/go-sap/pkg/command"
	"github.com/assist-lab/go-sap/pkg/config"
)

const (
	TypeOptionName = "type"
)

// NewCommand creates the offline decode command: it takes a raw frame as a
// hex string and prints the decoded payload and calibrated values.
func NewCommand() *cobra.Command {
	var typeName string
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "decode <hex-frame>",
		Short: "Decode one raw 32-byte frame given as hex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if typeName == "" {
				typeName = cfg.Expect
			}
			packet, smpl, err := command.DecodeHex(args[0], typeName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "packet: %s offset: %d distance: %d trailer_valid: %v\n",
				packet.Type, packet.Offset, packet.HeaderDistance, packet.TrailerValid)
			fmt.Fprintf(cmd.OutOrStdout(), "payload: %s\n", command.HexDump(packet.Payload))
			fmt.Fprint(cmd.OutOrStdout(), smpl.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&typeName, TypeOptionName, "", "Packet type to search for. E.g. SAP_ACC_VOL. Empty means all.")
	return cmd
}
