package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/FreePeak/turso-mcp-server/pkg/tools"
)

func newToolsCmd(out io.Writer, verbose *bool) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			return printTools(out, a.dispatcher.List(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}

func printTools(out io.Writer, descriptors []tools.Descriptor, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(descriptors); err != nil {
			return fmt.Errorf("failed to encode catalog: %w", err)
		}
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader([]string{"Tool", "Required", "Optional", "Description"})

	for _, d := range descriptors {
		var required, optional []string
		for _, p := range d.Params() {
			if p.Required {
				required = append(required, p.Name)
			} else {
				optional = append(optional, p.Name)
			}
		}
		table.Append([]string{
			d.Name,
			strings.Join(required, ", "),
			strings.Join(optional, ", "),
			d.Description,
		})
	}

	table.Render()
	return nil
}
