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

package stream

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assist-lab/go-sap/pkg/config"
	"github.com/assist-lab/go-sap/pkg/srv/sap"
)

const (
	AddressOptionName = "address"
	PortOptionName    = "port"
	ExpectOptionName  = "expect"
)

// NewCommand creates the stream command which runs the frame receiver and
// the API server.
func NewCommand() *cobra.Command {
	var address, port, expect string
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Start the SAP stream server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				cfg.SourceConfig.Address = address
			}
			if port != "" {
				cfg.SourceConfig.Port = port
			}
			if expect != "" {
				cfg.Expect = expect
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			server, err := sap.NewSAPServer(ctx, cfg)
			if err != nil {
				return err
			}
			api, err := sap.NewApiServer(ctx, cfg, server)
			if err != nil {
				return err
			}

			errChan := make(chan error, 2)
			go func() {
				errChan <- server.Run()
			}()
			go func() {
				errChan <- api.Run()
			}()
			return <-errChan
		},
	}
	cmd.Flags().StringVar(&address, AddressOptionName, "", fmt.Sprintf("Address to bind. E.g. %s", config.DefaultSourceAddress))
	cmd.Flags().StringVar(&port, PortOptionName, "", fmt.Sprintf("Port number to bind. E.g. %s", config.DefaultSourcePort))
	cmd.Flags().StringVar(&expect, ExpectOptionName, "", "Packet type to search for. Empty means all.")
	return cmd
}
