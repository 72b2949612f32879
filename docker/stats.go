package docker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// statsRecord mirrors one docker stats --format json document.
type statsRecord struct {
	CPUPerc  string `json:"CPUPerc"`
	MemPerc  string `json:"MemPerc"`
	MemUsage string `json:"MemUsage"`
}

// parseStats decodes docker stats output like
//
//	{"CPUPerc":"12.34%","MemPerc":"2.44%","MemUsage":"100MiB / 4GiB"}
func parseStats(data []byte) (*ContainerStats, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var record statsRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse stats output: %w", err)
	}

	stats := &ContainerStats{
		CPUPct: parsePercent(record.CPUPerc),
		MemPct: parsePercent(record.MemPerc),
	}
	stats.MemMB, stats.MemLimitMB = parseMemUsage(record.MemUsage)
	return stats, nil
}

// parsePercent parses values like "12.34%". Unparseable input is 0.
func parsePercent(value string) float64 {
	value = strings.TrimSuffix(strings.TrimSpace(value), "%")
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

// parseMemUsage splits "100MiB / 4GiB" into used and limit megabytes.
func parseMemUsage(value string) (float64, float64) {
	parts := strings.SplitN(value, "/", 2)
	used := parseMemValue(strings.TrimSpace(parts[0]))
	var limit float64
	if len(parts) == 2 {
		limit = parseMemValue(strings.TrimSpace(parts[1]))
	}
	return used, limit
}

var memUnits = []struct {
	suffix string
	mb     float64
}{
	{"GiB", 1024},
	{"MiB", 1},
	{"KiB", 1.0 / 1024},
	{"GB", 1000.0 * 1000 * 1000 / (1024 * 1024)},
	{"MB", 1000.0 * 1000 / (1024 * 1024)},
	{"kB", 1000.0 / (1024 * 1024)},
	{"B", 1.0 / (1024 * 1024)},
}

// parseMemValue converts a docker memory value like "100MiB" to megabytes.
// Unparseable input is 0.
func parseMemValue(value string) float64 {
	for _, unit := range memUnits {
		if !strings.HasSuffix(value, unit.suffix) {
			continue
		}
		number := strings.TrimSpace(strings.TrimSuffix(value, unit.suffix))
		f, err := strconv.ParseFloat(number, 64)
		if err != nil {
			return 0
		}
		return f * unit.mb
	}
	return 0
}
