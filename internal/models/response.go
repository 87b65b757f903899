package models

type SearchResponse struct {
	Success    bool   `json:"success"`
	BookingURL string `json:"booking_url"`
}

type ExtractedParams struct {
	FlightParams
	FieldSources map[string]FieldSource `json:"field_sources"`
	Adjustments  []string               `json:"adjustments,omitempty"`
	Issues       []string               `json:"issues,omitempty"`
}

type AISearchResponse struct {
	Success         bool            `json:"success"`
	BookingURL      string          `json:"booking_url"`
	ExtractedParams ExtractedParams `json:"extracted_params"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func NewExtractedParams(res ExtractionResult) ExtractedParams {
	sources := make(map[string]FieldSource, len(res.Sources))
	for k, v := range res.Sources {
		sources[k] = v
	}
	return ExtractedParams{
		FlightParams: res.Request.Params(),
		FieldSources: sources,
		Adjustments:  res.Adjustments,
		Issues:       res.Issues,
	}
}
