package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newCallCmd(out io.Writer, verbose *bool) *cobra.Command {
	var rawArgs string

	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Run one tool and print its response text",
		Long:  "Run one tool and print its response text. The tool prefix may be omitted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseToolArgs(rawArgs)
			if err != nil {
				return err
			}

			a, err := newApp(*verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			env := a.dispatcher.Call(cmd.Context(), a.dispatcher.Resolve(args[0]), params)
			fmt.Fprintln(out, env.Text())
			if env.IsError {
				return errToolFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rawArgs, "args", "{}", "tool arguments as a JSON object")
	return cmd
}

func parseToolArgs(raw string) (map[string]interface{}, error) {
	var params map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, fmt.Errorf("invalid --args: %w", err)
	}
	if params == nil {
		params = map[string]interface{}{}
	}
	return params, nil
}
