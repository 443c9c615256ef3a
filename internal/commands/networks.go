package commands

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/compose-network/passkey-deployer/configs"
	"github.com/compose-network/passkey-deployer/internal/network"
	"github.com/spf13/cobra"
)

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List the networks available with the current environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := resolveNetworks(configs.Values.Network)
		if err != nil {
			return err
		}

		return renderNetworks(cmd.OutOrStdout(), set)
	},
}

// renderNetworks prints one row per network. Endpoints are reduced to their
// host so that keys embedded in URL paths are never shown.
func renderNetworks(w io.Writer, set network.Set) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCHAIN ID\tENDPOINT")

	for _, name := range set.Names() {
		profile, err := set.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, chainIDLabel(profile), endpointLabel(profile))
	}

	return tw.Flush()
}

func chainIDLabel(p network.Profile) string {
	if p.ChainID == 0 {
		return "from endpoint"
	}
	return strconv.FormatInt(p.ChainID, 10)
}

func endpointLabel(p network.Profile) string {
	if p.IsLocal() {
		return "in-process"
	}
	if p.URL == "" {
		return "unset"
	}

	u, err := url.Parse(p.URL)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Host
}
