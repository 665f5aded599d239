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

package samples

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assist-lab/go-sap/pkg/command"
	"github.com/assist-lab/go-sap/pkg/config"
)

const (
	TypeOptionName  = "type"
	LimitOptionName = "limit"
)

// NewCommand creates the samples command which queries a running stream
// server for recent calibrated samples.
func NewCommand() *cobra.Command {
	var typeName string
	var limit int
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "samples",
		Short: "List recent calibrated samples",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			if typeName != "" {
				samples, err := apiClient.SamplesByType(typeName, limit)
				if err != nil {
					return err
				}
				for _, smpl := range samples {
					fmt.Fprint(cmd.OutOrStdout(), smpl.String())
				}
				return nil
			}
			all, err := apiClient.Samples(limit)
			if err != nil {
				return err
			}
			for _, samples := range all {
				for _, smpl := range samples {
					fmt.Fprint(cmd.OutOrStdout(), smpl.String())
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&typeName, TypeOptionName, "", "Packet type to list samples for. E.g. SAP_ACC")
	cmd.Flags().IntVar(&limit, LimitOptionName, 10, "Maximum number of samples per packet type")
	return cmd
}
