package population

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/numistats/ngcpop/pkg/grading"
)

// populationFieldPrefix marks the per-grade count fields in a coin
// record, e.g. "population_65" holds the count of coins graded 65.
const populationFieldPrefix = "population_"

// ExtractCoin turns one raw coin record into a CoinResult.
//
// It scans every field named population_<N> with a strictly positive
// integer value, parses <N> as the numeric grade, maps it to a display
// label, and sorts the surviving pairs by descending numeric grade
// (ties keep discovery order). A field with a zero, negative,
// non-integer, or missing value is skipped, as is one whose suffix is
// not numeric; a single malformed field never fails the record.
//
// The second return value is false when no positive-count field
// survived; such coins are dropped from the report entirely. An error
// is returned only when the record itself is not a JSON object.
func ExtractCoin(record json.RawMessage, groupID int, designation Designation) (CoinResult, bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(record, &fields); err != nil {
		return CoinResult{}, false, fmt.Errorf("coin record is not an object: %w", err)
	}

	displayName := fmt.Sprintf("Group %d", groupID)
	if raw, ok := fields["displayName"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err == nil && name != "" {
			displayName = name
		}
	}

	// JSON object iteration order is not deterministic in Go, so walk
	// the record in its original key order to keep tie-breaking stable.
	grades := make([]GradePopulation, 0, 8)
	for _, key := range recordKeys(record) {
		if !strings.HasPrefix(key, populationFieldPrefix) {
			continue
		}

		var count int
		if err := json.Unmarshal(fields[key], &count); err != nil || count <= 0 {
			continue
		}

		// population_69 -> 69; a non-numeric suffix is not a grade field.
		suffix := strings.Split(key, "_")[1]
		grade, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}

		grades = append(grades, GradePopulation{
			Grade: grading.MapGrade(string(designation), grade),
			Count: count,
		})
	}

	if len(grades) == 0 {
		return CoinResult{}, false, nil
	}

	sort.SliceStable(grades, func(i, j int) bool {
		return grading.LabelValue(grades[i].Grade) > grading.LabelValue(grades[j].Grade)
	})

	return CoinResult{
		GroupID:     groupID,
		CoinName:    displayName,
		Designation: string(designation),
		Grades:      grades,
	}, true, nil
}

// recordKeys returns the object's keys in their original order by
// re-tokenizing the raw record. map iteration order in Go is random,
// so the raw bytes are the only source of a stable field order.
func recordKeys(record json.RawMessage) []string {
	dec := json.NewDecoder(bytes.NewReader(record))

	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, key)

		if err := skipValue(dec); err != nil {
			return keys
		}
	}
	return keys
}

// skipValue consumes one JSON value, descending through nested
// objects and arrays.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); ok && (d == '{' || d == '[') {
		depth := 1
		for depth > 0 {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			if d, ok := tok.(json.Delim); ok {
				switch d {
				case '{', '[':
					depth++
				case '}', ']':
					depth--
				}
			}
		}
	}
	return nil
}
