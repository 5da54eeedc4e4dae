// Command emuctl is a command-line client for the emulatord HTTP API.
//
// Usage:
//
//	emuctl -server=http://localhost:8083 -list
//	emuctl -server=http://localhost:8083 -stat=GSMF -info
//	emuctl -server=http://localhost:8083 -parameters
//	emuctl -server=http://localhost:8083 -stat=GSMF \
//	  -params=3.0,0.5,1.0,0.7,0.1 -samples=200
//
// Predictions print as tab-separated columns (grid, mean, lower, upper)
// suitable for piping into plotting tools; -json switches to raw JSON.
//
// Environment variables:
//
//	EMULATOR_SERVER - Server base URL (default: http://localhost:8083)
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cosmohub/subgridemu/pkg/emulator"
	"github.com/cosmohub/subgridemu/pkg/httpx"
	"github.com/cosmohub/subgridemu/pkg/tls"
)

func main() {
	server := flag.String("server", getEnv("EMULATOR_SERVER", "http://localhost:8083"), "Server base URL")
	list := flag.Bool("list", false, "List emulated statistics")
	parameters := flag.Bool("parameters", false, "Show the canonical input parameter table")
	stat := flag.String("stat", "", "Statistic name (e.g. GSMF)")
	info := flag.Bool("info", false, "Show metadata for -stat instead of predicting")
	params := flag.String("params", "", "Comma-separated parameter values")
	samples := flag.Int("samples", 0, "Posterior sample count (0 uses the server default)")
	zIndex := flag.Int("z", 0, "Redshift index")
	rawJSON := flag.Bool("json", false, "Print raw JSON responses")
	timeout := flag.Duration("timeout", 60*time.Second, "Request timeout")

	flag.BoolVar(&tlsCfg.Enabled, "tls-enabled", false, "Enable mTLS")
	flag.StringVar(&tlsCfg.CertFile, "tls-cert-file", "", "Client certificate file")
	flag.StringVar(&tlsCfg.KeyFile, "tls-key-file", "", "Client private key file")
	flag.StringVar(&tlsCfg.CAFile, "tls-ca-file", "", "CA certificate file")

	flag.Parse()

	client, err := httpx.NewClient(tlsCfg, *timeout)
	if err != nil {
		fatalf("tls configuration: %v", err)
	}

	c := &apiClient{base: strings.TrimRight(*server, "/"), http: client, raw: *rawJSON}

	switch {
	case *list:
		err = c.listStatistics()
	case *parameters:
		err = c.parameterTable()
	case *stat != "" && *info:
		err = c.statisticInfo(*stat)
	case *stat != "" && *params != "":
		var vec []float64
		vec, err = parseParams(*params)
		if err == nil {
			err = c.predict(*stat, vec, *samples, *zIndex)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		fatalf("%v", err)
	}
}

var tlsCfg tls.Config

type apiClient struct {
	base string
	http *http.Client
	raw  bool
}

func (c *apiClient) get(path string) ([]byte, error) {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, serverError(resp.StatusCode, body)
	}
	return body, nil
}

func (c *apiClient) listStatistics() error {
	body, err := c.get("/v1/statistics")
	if err != nil {
		return err
	}
	if c.raw {
		fmt.Println(string(body))
		return nil
	}

	var groups map[string][]string
	if err := json.Unmarshal(body, &groups); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	for _, group := range []string{"5-parameter", "2-parameter"} {
		fmt.Printf("%s:\n", group)
		for _, name := range groups[group] {
			fmt.Printf("  %s\n", name)
		}
	}
	return nil
}

func (c *apiClient) parameterTable() error {
	body, err := c.get("/v1/parameters")
	if err != nil {
		return err
	}
	if c.raw {
		fmt.Println(string(body))
		return nil
	}

	var table struct {
		Names        []string              `json:"names"`
		Ranges       map[string][2]float64 `json:"ranges"`
		Descriptions map[string]string     `json:"descriptions"`
	}
	if err := json.Unmarshal(body, &table); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	for _, name := range table.Names {
		r := table.Ranges[name]
		fmt.Printf("%-14s [%g, %g]  %s\n", name, r[0], r[1], table.Descriptions[name])
	}
	return nil
}

func (c *apiClient) statisticInfo(name string) error {
	body, err := c.get("/v1/statistics/" + name)
	if err != nil {
		return err
	}
	if c.raw {
		fmt.Println(string(body))
		return nil
	}

	var meta struct {
		Name       string    `json:"name"`
		ParamCount int       `json:"paramCount"`
		Transform  string    `json:"transform"`
		XLabel     string    `json:"xLabel"`
		Grid       []float64 `json:"nominalGrid"`
		ValidRange struct {
			Low  float64 `json:"low"`
			High float64 `json:"high"`
		} `json:"validRange"`
	}
	if err := json.Unmarshal(body, &meta); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	fmt.Printf("statistic:    %s\n", meta.Name)
	fmt.Printf("parameters:   %d\n", meta.ParamCount)
	fmt.Printf("transform:    %s\n", meta.Transform)
	fmt.Printf("x axis:       %s\n", meta.XLabel)
	fmt.Printf("grid points:  %d\n", len(meta.Grid))
	fmt.Printf("valid range:  [%g, %g]\n", meta.ValidRange.Low, meta.ValidRange.High)
	return nil
}

func (c *apiClient) predict(name string, params []float64, samples, zIndex int) error {
	reqBody, err := json.Marshal(map[string]any{
		"params":  params,
		"samples": samples,
		"zIndex":  zIndex,
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/statistics/%s/predict", c.base, name)
	resp, err := c.http.Post(url, "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("POST %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return serverError(resp.StatusCode, body)
	}

	if c.raw {
		fmt.Println(string(body))
		return nil
	}

	var result emulator.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	fmt.Printf("# %s, %d samples\n", result.Statistic, result.Samples)
	fmt.Println("# grid\tmean\tlower\tupper")
	for i := range result.Grid {
		fmt.Printf("%g\t%g\t%g\t%g\n", result.Grid[i], result.Mean[i], result.Lower[i], result.Upper[i])
	}
	return nil
}

// serverError extracts the {"error": "..."} message the server sends with
// non-200 responses.
func serverError(status int, body []byte) error {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return fmt.Errorf("server returned %d: %s", status, e.Error)
	}
	return fmt.Errorf("server returned %d", status)
}

func parseParams(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid parameter %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
