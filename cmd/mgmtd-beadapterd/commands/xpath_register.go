package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mgmtd/beadapter/internal/cliutil"
	"github.com/mgmtd/beadapter/internal/subscr"
)

var xpathRegisterCmd = &cobra.Command{
	Use:   "xpath-register",
	Short: "Dump the static XPath subscription registry",
	Long: `List every pattern in the compiled-in (or configured) static XPath
subscription registry, and each subscriber's capability bits.

Examples:
  # Dump the effective registry
  mgmtd-beadapterd xpath-register

  # Dump a configured override
  mgmtd-beadapterd xpath-register --config /etc/mgmtd-beadapterd/config.yaml`,
	RunE: runXPathRegister,
}

type registryRows [][]string

func (r registryRows) Headers() []string {
	return []string{"PATTERN", "CLIENT", "VALIDATE_CONFIG", "NOTIFY_CONFIG", "OWN_OPER_DATA"}
}
func (r registryRows) Rows() [][]string { return r }

func runXPathRegister(cmd *cobra.Command, args []string) error {
	subs, err := loadSubscriptions()
	if err != nil {
		return fmt.Errorf("load subscription registry: %w", err)
	}

	entries := subs.Entries()
	if len(entries) == 0 {
		fmt.Println("No patterns registered.")
		return nil
	}

	rows := make(registryRows, 0, len(entries))
	for _, e := range entries {
		names := make([]string, 0, len(e.Subscribers))
		byName := make(map[string]subscr.Capabilities, len(e.Subscribers))
		for id, c := range e.Subscribers {
			name := id.String()
			names = append(names, name)
			byName[name] = c
		}
		sort.Strings(names)

		for _, name := range names {
			c := byName[name]
			rows = append(rows, []string{e.Pattern, name, boolStr(c.ValidateConfig), boolStr(c.NotifyConfig), boolStr(c.OwnOperData)})
		}
	}
	cliutil.PrintTable(os.Stdout, rows)
	return nil
}
