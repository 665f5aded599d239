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
	"sort"

	"github.com/spf13/cobra"

	"github.com/assist-lab/go-sap/pkg/command"
	"github.com/assist-lab/go-sap/pkg/config"
)

// NewStatsCommand creates the stats command which prints the decode
// counters of a running stream server.
func NewStatsCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show decode statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			stats, err := apiClient.Stats()
			if err != nil {
				return err
			}
			names := make([]string, 0, len(stats))
			for name := range stats {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", name, stats[name])
			}
			return nil
		},
	}
	return cmd
}
