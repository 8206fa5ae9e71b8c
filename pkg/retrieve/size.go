package retrieve

import (
	"encoding/json"

	"github.com/rhonorato-ship-it/metabase-mcp/pkg/optimize"
)

// Token estimate thresholds for response size logging.
const (
	ModerateTokenThreshold = 15000
	LargeTokenThreshold    = 20000

	// charsPerToken is a coarse average for JSON-heavy text.
	charsPerToken = 4
)

// EstimateTokens approximates the token cost of size bytes of JSON.
func EstimateTokens(size int) int {
	return size / charsPerToken
}

// monitorSize logs a debug note for moderate responses and a warning for
// large ones. It never fails the call.
func (r *Retriever) monitorSize(req *Request, requestID string, level optimize.Level, results []map[string]any) {
	data, err := json.Marshal(results)
	if err != nil {
		r.logger.Warn().Err(err).Str("request_id", requestID).Msg("Failed to measure response size")
		return
	}

	size := len(data)
	tokens := EstimateTokens(size)
	estimatedTokens.WithLabelValues(string(req.Model)).Observe(float64(tokens))

	switch {
	case tokens >= LargeTokenThreshold:
		r.logger.Warn().
			Str("request_id", requestID).
			Str("model", string(req.Model)).
			Int("size_bytes", size).
			Int("estimated_tokens", tokens).
			Str("optimization_level", level.String()).
			Int("items", len(results)).
			Msg("Large response, consider fewer IDs per call")
	case tokens >= ModerateTokenThreshold:
		r.logger.Debug().
			Str("request_id", requestID).
			Str("model", string(req.Model)).
			Int("size_bytes", size).
			Int("estimated_tokens", tokens).
			Str("optimization_level", level.String()).
			Msg("Moderate response size")
	}
}
