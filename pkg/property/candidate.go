package property

// CandidateSource records how a candidate was discovered.
type CandidateSource string

const (
	SourceTextSearch  CandidateSource = "text_search"
	SourceImageSearch CandidateSource = "image_search"
	SourcePlatform    CandidateSource = "platform"
	SourceOwnerSite   CandidateSource = "owner_site"
)

// Candidate is a search result that might be the same property (or a
// comparable one) on another site.
type Candidate struct {
	URL      string
	Source   CandidateSource
	Query    string
	Title    string
	Snippet  string
	Platform Platform
}

// NewCandidate builds a candidate and derives its platform from the URL.
func NewCandidate(url string, source CandidateSource, query, title, snippet string) Candidate {
	return Candidate{
		URL:      url,
		Source:   source,
		Query:    query,
		Title:    title,
		Snippet:  snippet,
		Platform: PlatformFromURL(url),
	}
}

// ScrapedContent is the fetched page content for a candidate URL.
// Err is set when the fetch failed; Text is then empty.
type ScrapedContent struct {
	URL             string
	Title           string
	MetaDescription string
	Text            string
	Err             string
}

// Failed reports whether the fetch produced no usable content.
func (s ScrapedContent) Failed() bool {
	return s.Err != "" || s.Text == ""
}
