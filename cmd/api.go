// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cvflow/cli/internal/backend"
)

var (
	apiData  string
	apiQuery []string
)

// apiCmd sends an authenticated request to any backend path.
var apiCmd = &cobra.Command{
	Use:   "api <METHOD> <PATH>",
	Short: "Call a backend endpoint with the current session",
	Long: `The api command sends a request to PATH (relative to the API base URL) with
the session's access token and prints the response body. An expired token is
refreshed and the request retried once.

Examples:
  cvflow api GET /candidates -q page=2 -q size=20
  cvflow api POST /jobs -d '{"title":"Go engineer"}'
  cvflow api POST /jobs -d @job.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := requestBody(apiData)
		if err != nil {
			return err
		}
		query, err := parseQuery(apiQuery)
		if err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireLogin(); err != nil {
			return err
		}

		resp, err := spin("Calling "+args[1], func() (*backend.RawResponse, error) {
			return a.api.Call(cmd.Context(), args[0], args[1], query, body)
		})
		if resp != nil {
			printBody(os.Stdout, resp.Body)
		}
		if err != nil {
			var se *backend.StatusError
			if errors.As(err, &se) {
				pterm.Error.Printfln("%d %s", se.StatusCode, se.Message)
				return &shownError{err: err}
			}
			return a.fail(err, "calling "+args[1])
		}
		return nil
	},
}

// requestBody accepts inline JSON or @file.
func requestBody(data string) ([]byte, error) {
	if data == "" {
		return nil, nil
	}
	var b []byte
	if name, ok := strings.CutPrefix(data, "@"); ok {
		var err error
		if b, err = os.ReadFile(name); err != nil {
			return nil, err
		}
	} else {
		b = []byte(data)
	}
	if !json.Valid(b) {
		return nil, errors.New("request body is not valid JSON")
	}
	return b, nil
}

func parseQuery(pairs []string) (url.Values, error) {
	q := url.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid query parameter %q (want key=value)", p)
		}
		q.Add(k, v)
	}
	return q, nil
}

// printBody pretty-prints JSON bodies and copies anything else as is.
func printBody(w io.Writer, body []byte) {
	if len(body) == 0 {
		return
	}
	var out bytes.Buffer
	if json.Indent(&out, body, "", "  ") == nil {
		out.WriteByte('\n')
		_, _ = out.WriteTo(w)
		return
	}
	_, _ = w.Write(body)
}

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVarP(&apiData, "data", "d", "", "JSON request body, or @file")
	apiCmd.Flags().StringArrayVarP(&apiQuery, "query", "q", nil, "Query parameter key=value (repeatable)")
}
