package core

// GroundingMetadata links generated text spans to retrieved sources.
type GroundingMetadata struct {
	GroundingChunks   []GroundingChunk   `json:"groundingChunks,omitempty"`
	GroundingSupports []GroundingSupport `json:"groundingSupports,omitempty"`
	RetrievalMetadata *RetrievalMetadata `json:"retrievalMetadata,omitempty"`
	RetrievalQueries  []string           `json:"retrievalQueries,omitempty"`
	SearchEntryPoint  *SearchEntryPoint  `json:"searchEntryPoint,omitempty"`
	WebSearchQueries  []string           `json:"webSearchQueries,omitempty"`
}

// GroundingChunk is one citation; exactly one of the fields is expected.
type GroundingChunk struct {
	RetrievedContext *RetrievedContext `json:"retrievedContext,omitempty"`
	Web              *WebContext       `json:"web,omitempty"`
}

// RetrievedContext is a retrieval-augmented citation.
type RetrievedContext struct {
	Text  string `json:"text,omitempty"`
	Title string `json:"title,omitempty"`
	URI   string `json:"uri,omitempty"`
}

// WebContext is a web search citation.
type WebContext struct {
	Domain string `json:"domain,omitempty"`
	Title  string `json:"title,omitempty"`
	URI    string `json:"uri,omitempty"`
}

// GroundingSupport ties a response segment to grounding chunks.
type GroundingSupport struct {
	ConfidenceScores      []float64 `json:"confidenceScores,omitempty"`
	GroundingChunkIndices []int     `json:"groundingChunkIndices,omitempty"`
	Segment               *Segment  `json:"segment,omitempty"`
}

// Segment addresses a span of a response part.
type Segment struct {
	StartIndex int    `json:"startIndex"`
	EndIndex   int    `json:"endIndex"`
	PartIndex  int    `json:"partIndex"`
	Text       string `json:"text,omitempty"`
}

// RetrievalMetadata carries the dynamic retrieval score, if any.
type RetrievalMetadata struct {
	GoogleSearchDynamicRetrievalScore *float64 `json:"googleSearchDynamicRetrievalScore,omitempty"`
}

// SearchEntryPoint is the search suggestion rendering returned with web
// grounding.
type SearchEntryPoint struct {
	RenderedContent *string `json:"renderedContent,omitempty"`
	SDKBlob         *string `json:"sdkBlob,omitempty"`
}

// Sources returns the URIs of all chunks in chunk order, skipping empty ones.
func (g *GroundingMetadata) Sources() []string {
	if g == nil {
		return nil
	}
	var uris []string
	for _, c := range g.GroundingChunks {
		switch {
		case c.Web != nil && c.Web.URI != "":
			uris = append(uris, c.Web.URI)
		case c.RetrievedContext != nil && c.RetrievedContext.URI != "":
			uris = append(uris, c.RetrievedContext.URI)
		}
	}
	return uris
}
