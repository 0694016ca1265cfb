package entity

// TopicInfo describes one structured civics topic in a jurisdiction's index
// file. Keywords drive the deterministic topic matcher; File points at the
// topic's detail document relative to the index.
type TopicInfo struct {
	ID                 string   `json:"id"`
	File               string   `json:"file"`
	Title              string   `json:"title"`
	Keywords           []string `json:"keywords"`
	OrdinanceReference string   `json:"ordinance_reference"`
}

type CommonQuestion struct {
	Question   string `json:"question"`
	Topic      string `json:"topic"`
	AnswerPath string `json:"answer_path"`
}

type ContactInfo struct {
	GeneralInfo     string `json:"general_info"`
	Website         string `json:"website"`
	ServiceRequests string `json:"service_requests"`
}

// TopicIndex is the per-jurisdiction index.json shape. Topics and
// CommonQuestions are ordered sequences; match precedence depends on
// preserving source order exactly.
type TopicIndex struct {
	Jurisdiction     string           `json:"jurisdiction"`
	JurisdictionName string           `json:"jurisdiction_name"`
	State            string           `json:"state"`
	Version          string           `json:"version"`
	LastUpdated      string           `json:"last_updated"`
	Topics           []TopicInfo      `json:"topics"`
	CommonQuestions  []CommonQuestion `json:"common_questions"`
	Contact          ContactInfo      `json:"contact"`
}

// TopicMatch is one scored topic hit for a free-text question. Confidence is
// a heuristic in [0,1], not a calibrated probability.
type TopicMatch struct {
	Topic           TopicInfo      `json:"topic"`
	Data            map[string]any `json:"data"`
	MatchedKeywords []string       `json:"matched_keywords"`
	Confidence      float64        `json:"confidence"`
}

// CommonQuestionMatch resolves a canonical question to its answer location
// inside a topic's structured data.
type CommonQuestionMatch struct {
	Topic      string         `json:"topic"`
	AnswerPath string         `json:"answer_path"`
	Data       map[string]any `json:"data"`
}
