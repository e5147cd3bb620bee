package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/schedyio/schedy/pkg/scalar"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func row(w io.Writer, cells ...string) {
	fmt.Fprintln(w, strings.Join(cells, "\t"))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatScalars(m scalar.Map) string {
	parts := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, scalar.ToNative(m[k])))
	}
	return strings.Join(parts, ", ")
}

func formatMetrics(m map[string]float64) string {
	parts := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		parts = append(parts, fmt.Sprintf("%s=%g", k, m[k]))
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// parseScalars reads a JSON object of plain values. Integers stay integers.
func parseScalars(s string) (scalar.Map, error) {
	if s == "" {
		return nil, nil
	}
	decoder := json.NewDecoder(bytes.NewReader([]byte(s)))
	decoder.UseNumber()
	var native map[string]interface{}
	if err := decoder.Decode(&native); err != nil {
		return nil, fmt.Errorf("expected a JSON object: %w", err)
	}
	return scalar.FromNativeMap(native)
}

// parseMetrics reads a JSON object of numbers, "+Inf", "-Inf" or "NaN".
func parseMetrics(s string) (map[string]float64, error) {
	if s == "" {
		return nil, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("expected a JSON object: %w", err)
	}
	metrics := make(map[string]float64, len(raw))
	for name, value := range raw {
		f, err := scalar.DecodeNumber(value)
		if err != nil {
			return nil, fmt.Errorf("metric %s: %w", name, err)
		}
		metrics[name] = f
	}
	return metrics, nil
}
