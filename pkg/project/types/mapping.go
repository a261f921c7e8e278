package types

const (
	DEFAULT_MAP_INDEX = 0

	// A project carries at most this many named mappings (the auto-generated
	// default plus user-defined ones).
	MAX_MAPPING_COUNT = 4
)

// Mapping is one named, per-project export mapping. Forms is keyed by form
// ref; each form map is keyed by input ref.
type Mapping struct {
	Name    string             `bson:"name" json:"name"`
	Default bool               `bson:"is_default" json:"is_default"`
	Forms   map[string]FormMap `bson:"forms" json:"forms"`
}

type FormMap map[string]InputMap

// InputMap holds the export instructions for one input. Group children and
// branch inputs carry their own nested maps, keyed by the child input ref;
// group maps are flattened into the form namespace during resolution.
type InputMap struct {
	Hide            bool                         `bson:"hide" json:"hide"`
	MapTo           string                       `bson:"map_to" json:"map_to"`
	PossibleAnswers map[string]PossibleAnswerMap `bson:"possible_answers,omitempty" json:"possible_answers,omitempty"`
	Group           map[string]InputMap          `bson:"group,omitempty" json:"group,omitempty"`
	Branch          map[string]InputMap          `bson:"branch,omitempty" json:"branch,omitempty"`
}

type PossibleAnswerMap struct {
	MapTo string `bson:"map_to" json:"map_to"`
}
