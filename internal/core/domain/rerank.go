package domain

// RerankCandidate is one candidate sent to the semantic re-ranker.
type RerankCandidate struct {
	Index         int     `json:"index"`
	Name          string  `json:"sku_name"`
	OriginalScore float64 `json:"original_score"`
}

// RerankRequest is the payload sent to the re-rank collaborator.
type RerankRequest struct {
	Query      string            `json:"query"`
	Candidates []RerankCandidate `json:"candidates"`
}

// RerankedResult is one entry of the collaborator's response. The response
// order defines the new ranking; the caller does not re-sort it.
type RerankedResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
	Reason         string  `json:"reason"`
}

// RerankResponse is the re-rank collaborator's reply. The collaborator is
// idempotent per request but not deterministic across calls; bounded
// variation is expected and is not an error.
type RerankResponse struct {
	Results []RerankedResult `json:"reranked_results"`
}
