package performance

import (
	"fmt"
	"hash/fnv"
	"sort"
)

// EvidenceItem is one row of the human-readable evidence shown with a
// detected problem.
type EvidenceItem struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Important bool   `json:"important"`
}

// Problem is a single detected performance issue within a transaction.
// Identity is the (fingerprint, offender span set, group type) triple;
// the descriptive fields carry no identity.
type Problem struct {
	Fingerprint     string
	Op              string
	Desc            string
	Type            GroupType
	ParentSpanIds   []string
	CauseSpanIds    []string
	OffenderSpanIds []string
	EvidenceData    map[string]any
	EvidenceDisplay []EvidenceItem
}

// Title returns the display name of the problem's group type.
func (p Problem) Title() string {
	return p.Type.Description
}

// canonicalOffenders returns the offender span ids as a sorted,
// deduplicated set.
func (p Problem) canonicalOffenders() []string {
	seen := map[string]struct{}{}
	offenders := []string{}
	for _, spanId := range p.OffenderSpanIds {
		if _, ok := seen[spanId]; ok {
			continue
		}
		seen[spanId] = struct{}{}
		offenders = append(offenders, spanId)
	}
	sort.Strings(offenders)
	return offenders
}

// Equal reports identity equality: same fingerprint, the same set of
// offender spans (order and duplicates ignored), and the same group
// type.
func (p Problem) Equal(other Problem) bool {
	if p.Fingerprint != other.Fingerprint {
		return false
	}
	if p.Type.Id != other.Type.Id {
		return false
	}
	offenders := p.canonicalOffenders()
	otherOffenders := other.canonicalOffenders()
	if len(offenders) != len(otherOffenders) {
		return false
	}
	for i := range offenders {
		if offenders[i] != otherOffenders[i] {
			return false
		}
	}
	return true
}

// Hash returns a digest of the identity triple, consistent with Equal:
// problems that compare equal hash to the same value.
func (p Problem) Hash() uint64 {
	digest := fnv.New64a()
	digest.Write([]byte(p.Fingerprint))
	digest.Write([]byte{0})
	for _, spanId := range p.canonicalOffenders() {
		digest.Write([]byte(spanId))
		digest.Write([]byte{0})
	}
	fmt.Fprintf(digest, "%d", p.Type.Id)
	return digest.Sum64()
}

// ToMap serializes the problem for event payloads. The group type is
// carried as its wire id.
func (p Problem) ToMap() map[string]any {
	evidenceDisplay := []map[string]any{}
	for _, item := range p.EvidenceDisplay {
		evidenceDisplay = append(evidenceDisplay, map[string]any{
			"name":      item.Name,
			"value":     item.Value,
			"important": item.Important,
		})
	}
	return map[string]any{
		"fingerprint":       p.Fingerprint,
		"op":                p.Op,
		"desc":              p.Desc,
		"type":              p.Type.Id,
		"parent_span_ids":   p.ParentSpanIds,
		"cause_span_ids":    p.CauseSpanIds,
		"offender_span_ids": p.OffenderSpanIds,
		"evidence_data":     p.EvidenceData,
		"evidence_display":  evidenceDisplay,
	}
}

// FromMap deserializes a problem produced by ToMap, including payloads
// that went through JSON (where lists arrive as []any and numbers as
// float64).
func FromMap(data map[string]any) (Problem, error) {
	problem := Problem{}
	problem.Fingerprint, _ = data["fingerprint"].(string)
	problem.Op, _ = data["op"].(string)
	problem.Desc, _ = data["desc"].(string)

	typeId, err := toInt(data["type"])
	if err != nil {
		return Problem{}, fmt.Errorf("failed to parse type: %w", err)
	}
	groupType, ok := GroupTypeById(typeId)
	if !ok {
		return Problem{}, fmt.Errorf("unknown group type id[%v]", typeId)
	}
	problem.Type = groupType

	if problem.ParentSpanIds, err = toStringSlice(data["parent_span_ids"]); err != nil {
		return Problem{}, fmt.Errorf("failed to parse parent_span_ids: %w", err)
	}
	if problem.CauseSpanIds, err = toStringSlice(data["cause_span_ids"]); err != nil {
		return Problem{}, fmt.Errorf("failed to parse cause_span_ids: %w", err)
	}
	if problem.OffenderSpanIds, err = toStringSlice(data["offender_span_ids"]); err != nil {
		return Problem{}, fmt.Errorf("failed to parse offender_span_ids: %w", err)
	}

	if evidenceData, ok := data["evidence_data"].(map[string]any); ok {
		problem.EvidenceData = evidenceData
	}
	problem.EvidenceDisplay = toEvidenceItems(data["evidence_display"])
	return problem, nil
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("unexpected type %T", value)
	}
}

func toStringSlice(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []any:
		output := make([]string, 0, len(v))
		for _, entry := range v {
			text, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected element type %T", entry)
			}
			output = append(output, text)
		}
		return output, nil
	default:
		return nil, fmt.Errorf("unexpected type %T", value)
	}
}

func toEvidenceItems(value any) []EvidenceItem {
	items := []EvidenceItem{}
	appendItem := func(entry map[string]any) {
		item := EvidenceItem{}
		item.Name, _ = entry["name"].(string)
		item.Value, _ = entry["value"].(string)
		item.Important, _ = entry["important"].(bool)
		items = append(items, item)
	}
	switch v := value.(type) {
	case []map[string]any:
		for _, entry := range v {
			appendItem(entry)
		}
	case []any:
		for _, rawEntry := range v {
			if entry, ok := rawEntry.(map[string]any); ok {
				appendItem(entry)
			}
		}
	}
	return items
}
