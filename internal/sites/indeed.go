package sites

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// IndeedParser parses Indeed job posting pages.
type IndeedParser struct{}

// NewIndeedParser creates an IndeedParser.
func NewIndeedParser() *IndeedParser {
	return &IndeedParser{}
}

func (p *IndeedParser) Name() string {
	return "indeed"
}

func (p *IndeedParser) CanParse(rawURL string) bool {
	return hostMatches(rawURL, "indeed.com")
}

// Parse pulls the posting fields out of an Indeed page. Indeed marks
// its header elements with stable data-testid attributes.
func (p *IndeedParser) Parse(html string) (Posting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Posting{}, &ParseError{Site: p.Name(), Message: "invalid html", Cause: err}
	}

	posting := Posting{
		JobTitle:       cleanField(doc.Find(`h1[data-testid="jobsearch-JobInfoHeader-title"]`).First().Text()),
		CompanyName:    cleanField(doc.Find(`[data-testid="inlineHeader-companyName"]`).First().Text()),
		Location:       cleanField(doc.Find(`[data-testid="job-location"]`).First().Text()),
		Salary:         cleanField(doc.Find(`[data-testid="attribute_snippet_testid"]`).First().Text()),
		Description:    descriptionText(doc, "#jobDescriptionText", ".jobsearch-jobDescriptionText"),
		EmploymentType: employmentType(doc.Text()),
	}

	if posting.Description == "" && posting.JobTitle == "" {
		return Posting{}, &ParseError{Site: p.Name(), Message: "no posting content found"}
	}
	return posting, nil
}

// descriptionText returns the text of the first selector that matches.
func descriptionText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if s := strings.TrimSpace(doc.Find(sel).First().Text()); s != "" {
			return s
		}
	}
	return ""
}

// employmentType scans page text for a work arrangement keyword.
func employmentType(text string) string {
	lower := strings.ToLower(text)
	for _, t := range []string{"full-time", "part-time", "contract", "internship"} {
		if strings.Contains(lower, t) {
			return t
		}
	}
	return ""
}
