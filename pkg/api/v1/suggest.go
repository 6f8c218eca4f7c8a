package v1

// SuggestProjectTypeRequest is the body of POST /api/projects/suggest-type.
type SuggestProjectTypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SuggestProjectTypeResponse carries the keyword matcher's verdict. An empty
// ProjectType means no keyword matched.
type SuggestProjectTypeResponse struct {
	ProjectType     string   `json:"projectType"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matchedKeywords"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
