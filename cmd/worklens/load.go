package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/worklens/worklens/internal/types"
)

// loadEvidence reads evidence items from a file holding either a JSON array
// or JSONL (one item per line). "-" reads stdin.
func loadEvidence(path string) ([]types.EvidenceItem, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = readAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading evidence: %w", err)
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []types.EvidenceItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("parsing evidence array: %w", err)
		}
		return items, nil
	}
	return parseJSONL(data)
}

func parseJSONL(data []byte) ([]types.EvidenceItem, error) {
	var items []types.EvidenceItem
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var item types.EvidenceItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return nil, fmt.Errorf("parsing evidence line %d: %w", lineNo, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading evidence lines: %w", err)
	}
	return items, nil
}

func readAll(f *os.File) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
