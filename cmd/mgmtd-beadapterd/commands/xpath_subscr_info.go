package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mgmtd/beadapter/internal/cliutil"
	"github.com/mgmtd/beadapter/internal/subscr"
)

var xpathSubscrInfoCmd = &cobra.Command{
	Use:   "xpath-subscr-info <path>",
	Short: "Resolve an instance path against the subscription registry",
	Long: `Resolve path against the static subscription registry the way the
config-sync driver does, and show which clients would be notified and with
which capabilities.

Examples:
  mgmtd-beadapterd xpath-subscr-info "/frr-vrf:lib/vrf[name='default']"`,
	Args: cobra.ExactArgs(1),
	RunE: runXPathSubscrInfo,
}

type subscrInfoRows [][]string

func (r subscrInfoRows) Headers() []string {
	return []string{"CLIENT", "VALIDATE_CONFIG", "NOTIFY_CONFIG", "OWN_OPER_DATA"}
}
func (r subscrInfoRows) Rows() [][]string { return r }

func runXPathSubscrInfo(cmd *cobra.Command, args []string) error {
	subs, err := loadSubscriptions()
	if err != nil {
		return fmt.Errorf("load subscription registry: %w", err)
	}

	caps := subs.Resolve(args[0])
	if len(caps) == 0 {
		fmt.Println("No subscribers for this path.")
		return nil
	}

	names := make([]string, 0, len(caps))
	byName := make(map[string]subscr.Capabilities, len(caps))
	for id, c := range caps {
		name := id.String()
		names = append(names, name)
		byName[name] = c
	}
	sort.Strings(names)

	rows := make(subscrInfoRows, 0, len(names))
	for _, name := range names {
		c := byName[name]
		rows = append(rows, []string{name, boolStr(c.ValidateConfig), boolStr(c.NotifyConfig), boolStr(c.OwnOperData)})
	}
	cliutil.PrintTable(os.Stdout, rows)
	return nil
}

func boolStr(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
