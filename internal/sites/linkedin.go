package sites

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkedInParser parses LinkedIn job posting pages. LinkedIn renders
// several page variants, so each field is tried against a selector list
// in order of reliability, with JSON-LD structured data preferred for
// the company name.
type LinkedInParser struct{}

// NewLinkedInParser creates a LinkedInParser.
func NewLinkedInParser() *LinkedInParser {
	return &LinkedInParser{}
}

func (p *LinkedInParser) Name() string {
	return "linkedin"
}

func (p *LinkedInParser) CanParse(rawURL string) bool {
	return hostMatches(rawURL, "linkedin.com")
}

var linkedinTitleSelectors = []string{
	"h1.top-card-layout__title",
	".job-details-jobs-unified-top-card__job-title h1",
	".jobs-unified-top-card__job-title h1",
}

var linkedinCompanySelectors = []string{
	`[data-test-id="job-details-header-company-name"]`,
	".job-details-jobs-unified-top-card__company-name a",
	".jobs-unified-top-card__company-name a",
	".jobs-unified-top-card__company-name",
	".topcard__org-name-link",
	".job-details-jobs-unified-top-card__primary-description-container a",
}

var linkedinDescriptionSelectors = []string{
	".jobs-box__html-content",
	".job-details-jobs-unified-top-card__job-description",
	".show-more-less-html__markup",
}

// titleCompanyRe matches LinkedIn page titles shaped like
// "Job Title - Company Name | LinkedIn".
var titleCompanyRe = regexp.MustCompile(`-\s*([^|]+?)\s*\|\s*LinkedIn`)

func (p *LinkedInParser) Parse(html string) (Posting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Posting{}, &ParseError{Site: p.Name(), Message: "invalid html", Cause: err}
	}

	posting := Posting{
		JobTitle:       firstSelectorText(doc, linkedinTitleSelectors),
		CompanyName:    p.companyName(doc),
		Description:    descriptionText(doc, linkedinDescriptionSelectors...),
		Location:       p.location(doc),
		EmploymentType: employmentType(doc.Text()),
	}

	if posting.Description == "" && posting.JobTitle == "" {
		return Posting{}, &ParseError{Site: p.Name(), Message: "no posting content found"}
	}
	return posting, nil
}

func (p *LinkedInParser) companyName(doc *goquery.Document) string {
	if name := companyFromJSONLD(doc); name != "" {
		return name
	}
	if name := firstSelectorText(doc, linkedinCompanySelectors); name != "" {
		return name
	}
	// Page title fallback: "Job Title - Company | LinkedIn"
	if m := titleCompanyRe.FindStringSubmatch(doc.Find("title").First().Text()); m != nil {
		return cleanField(m[1])
	}
	return ""
}

func (p *LinkedInParser) location(doc *goquery.Document) string {
	var found string
	doc.Find(".job-details-jobs-unified-top-card__bullet, .jobs-unified-top-card__bullet").
		EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			lower := strings.ToLower(text)
			if strings.Contains(lower, "remote") || strings.Contains(lower, "hybrid") || strings.Contains(text, ",") {
				found = cleanField(text)
				return false
			}
			return true
		})
	return found
}

// jsonLDOrganization is the subset of schema.org JobPosting data the
// parser cares about.
type jsonLDOrganization struct {
	HiringOrganization struct {
		Name      string `json:"name"`
		LegalName string `json:"legalName"`
	} `json:"hiringOrganization"`
}

// companyFromJSONLD reads the hiring organization out of embedded
// JSON-LD, the most stable source across LinkedIn page variants.
func companyFromJSONLD(doc *goquery.Document) string {
	var found string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := s.Text()
		var org jsonLDOrganization
		if err := json.Unmarshal([]byte(raw), &org); err == nil {
			if name := cleanField(org.HiringOrganization.Name); name != "" {
				found = name
				return false
			}
			if name := cleanField(org.HiringOrganization.LegalName); name != "" {
				found = name
				return false
			}
		}
		// Some pages wrap the posting in a JSON-LD array.
		var list []jsonLDOrganization
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			for _, item := range list {
				if name := cleanField(item.HiringOrganization.Name); name != "" {
					found = name
					return false
				}
			}
		}
		return true
	})
	return found
}

// firstSelectorText returns the first non-empty cleaned text among the
// given selectors, tried in order.
func firstSelectorText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := cleanField(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}
