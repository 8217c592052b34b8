package gemini

// GenerateRequest is the request body for the generateContent endpoint.
type GenerateRequest struct {
	Contents       []Content       `json:"contents"`
	SafetySettings []SafetySetting `json:"safetySettings"`
}

// Content holds the parts of a single content block.
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is one text fragment of a content block.
type Part struct {
	Text string `json:"text"`
}

// SafetySetting is a per-category content-filtering directive sent with
// every upstream request.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// DefaultSafetySettings blocks medium-and-above content across all four
// harm categories. Sent verbatim with every generateContent call.
var DefaultSafetySettings = []SafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// GenerateResponse mirrors the generateContent response shape. Every
// level of the candidate chain is optional: the API may omit any of
// them, and extraction must degrade rather than fail when one is
// missing.
type GenerateResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one generated answer.
type Candidate struct {
	Content *CandidateContent `json:"content"`
}

// CandidateContent holds a candidate's parts.
type CandidateContent struct {
	Parts []CandidatePart `json:"parts"`
}

// CandidatePart is one fragment of a candidate's content. Text is a
// pointer so an absent field is distinguishable from an empty string.
type CandidatePart struct {
	Text *string `json:"text"`
}

// Text walks candidates[0].content.parts[0].text and reports whether
// every link in the chain was present.
func (r *GenerateResponse) Text() (string, bool) {
	if len(r.Candidates) == 0 {
		return "", false
	}
	content := r.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", false
	}
	text := content.Parts[0].Text
	if text == nil {
		return "", false
	}
	return *text, true
}

// apiError is the JSON error body returned by the API on non-2xx
// responses. Both levels are optional.
type apiError struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}
