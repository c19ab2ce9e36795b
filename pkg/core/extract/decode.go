package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// stripFences removes conversational filler and outer markdown code blocks
// that models wrap around their JSON output.
func stripFences(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```json") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
		return strings.TrimSpace(cleaned)
	}
	if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		return strings.TrimSpace(cleaned)
	}
	return cleaned
}

// DecodeRawExtraction parses collaborator output into a RawExtraction,
// trying progressively more lenient strategies:
//  1. Standard JSON parse
//  2. JSON repair (unquoted keys, trailing commas, unclosed brackets)
//  3. Hjson (most lenient)
//
// It never invents content: if every strategy fails, the caller gets an
// error, not an empty result.
func DecodeRawExtraction(raw string) (*RawExtraction, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("collaborator returned empty output")
	}

	// Try 1: Standard JSON
	var result RawExtraction
	if err := json.Unmarshal([]byte(cleaned), &result); err == nil && result.Metrics != nil {
		return &result, nil
	}

	// Try 2: JSON repair
	if repaired, err := jsonrepair.RepairJSON(cleaned); err == nil {
		result = RawExtraction{}
		if err := json.Unmarshal([]byte(repaired), &result); err == nil && result.Metrics != nil {
			return &result, nil
		}
	}

	// Try 3: Hjson
	var loose interface{}
	if err := hjson.Unmarshal([]byte(cleaned), &loose); err == nil {
		if normalized, err := json.Marshal(loose); err == nil {
			result = RawExtraction{}
			if err := json.Unmarshal(normalized, &result); err == nil && result.Metrics != nil {
				return &result, nil
			}
		}
	}

	return nil, fmt.Errorf("all parsing strategies failed for collaborator output")
}
