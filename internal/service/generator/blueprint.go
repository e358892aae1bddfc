package generator

import (
	"encoding/json"
	"strings"
)

// Blueprint is the rhetorical structure of a post, as described by the
// model. Scores are on a 1 to 10 scale. Every field is optional.
type Blueprint struct {
	Hook struct {
		Type          string  `json:"type"`
		Text          string  `json:"text"`
		Effectiveness float64 `json:"effectiveness"`
	} `json:"hook"`
	NarrativeArc struct {
		Phases       []string `json:"phases"`
		TurningPoint string   `json:"turning_point"`
	} `json:"narrative_arc"`
	EmotionalTriggers    []string `json:"emotional_triggers"`
	PersuasionTechniques []string `json:"persuasion_techniques"`
	EngagementMechanics  struct {
		Debate         float64 `json:"debate"`
		SaveWorthiness float64 `json:"save_worthiness"`
		Shareability   float64 `json:"shareability"`
		CommentBait    float64 `json:"comment_bait"`
	} `json:"engagement_mechanics"`
	Formatting struct {
		LineBreaks      string `json:"line_breaks"`
		ParagraphLength string `json:"paragraph_length"`
		UsesLists       bool   `json:"uses_lists"`
		UsesEmojis      bool   `json:"uses_emojis"`
		Length          string `json:"length"`
	} `json:"formatting"`
	ViralityScore struct {
		Hook         float64 `json:"hook"`
		Relatability float64 `json:"relatability"`
		Value        float64 `json:"value"`
		Controversy  float64 `json:"controversy"`
	} `json:"virality_score"`
	Verdict             string `json:"verdict"`
	ReplicationStrategy string `json:"replication_strategy"`
}

// EmptyBlueprint is what the extractor returns when it has nothing to say.
const EmptyBlueprint = "{}"

// ParseBlueprint decodes raw leniently. The boolean reports whether any
// structural guidance was found.
func ParseBlueprint(raw string) (Blueprint, bool) {
	var bp Blueprint
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == EmptyBlueprint {
		return bp, false
	}
	if err := json.Unmarshal([]byte(raw), &bp); err != nil {
		return Blueprint{}, false
	}
	return bp, !bp.isZero()
}

func (b Blueprint) isZero() bool {
	return b.Hook.Type == "" &&
		len(b.NarrativeArc.Phases) == 0 &&
		b.Formatting.Length == "" &&
		b.Verdict == "" &&
		b.ReplicationStrategy == ""
}
