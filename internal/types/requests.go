package types

import "github.com/go-playground/validator/v10"

// AnalyzeRequest is the payload accepted by POST /analyze.
// Content is the plain page text, already detached from markup by the
// host page collaborator. RawHTML is optional and only consulted when a
// format-specific parser supports the URL. TabKey correlates repeated
// scans from the same tab so a late result for a superseded request can
// be rejected.
type AnalyzeRequest struct {
	Content      string `json:"content" validate:"required"`
	URL          string `json:"url,omitempty" validate:"omitempty,url"`
	RawHTML      string `json:"rawHTML,omitempty"`
	Title        string `json:"title,omitempty"`
	CompanyGuess string `json:"companyGuess,omitempty"`
	TabKey       string `json:"tabKey,omitempty"`
}

// Validate validates the AnalyzeRequest using the validator.
func (r *AnalyzeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// FeedbackRequest is the payload accepted by POST /feedback
type FeedbackRequest struct {
	Identity string `json:"identity" validate:"required"`
	Message  string `json:"message" validate:"required,max=2000"`
}

// Validate validates the FeedbackRequest using the validator.
func (r *FeedbackRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
