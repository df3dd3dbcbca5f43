package httpapi

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/PeytonNagle/MoodMusic2/internal/catalog"
	"github.com/PeytonNagle/MoodMusic2/internal/moodai"
	"github.com/PeytonNagle/MoodMusic2/internal/recommend"
)

// parseMoodQuery validates the shared search/recommend body into a
// MoodQuery. The user id comes from the access token when present, else
// from the body.
func parseMoodQuery(r *http.Request, req searchRequest) (recommend.MoodQuery, error) {
	query := recommend.MoodQuery{
		Text:            trimQuery(req.Query),
		Emojis:          parseEmojis(req.Emojis),
		Limit:           normalizeLimit(req.Limit, recommend.DefaultLimit),
		PopularityLabel: req.PopularityLabel,
		PopularityRange: req.PopularityRange,
		UserID:          req.UserID,
	}
	if claims, ok := claimsFromContext(r.Context()); ok {
		if uid, err := strconv.ParseInt(claims.UserID, 10, 64); err == nil {
			query.UserID = &uid
		}
	}
	if query.Text == "" && len(query.Emojis) == 0 {
		return recommend.MoodQuery{}, errors.New("please provide a search query or select emojis")
	}
	if len(query.Text) > maxQueryLength {
		return recommend.MoodQuery{}, errors.New("query is too long")
	}
	return query, nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	query, err := parseMoodQuery(r, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Printf("httpapi: search query=%q limit=%d popularity=%q emojis=%v",
		query.Text, query.Limit, query.PopularityLabel, query.Emojis)

	result, err := s.engine.Recommend(r.Context(), query)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"songs":    result.Songs,
		"analysis": result.Analysis,
		"partial":  result.Partial,
		"error":    nil,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	query, err := parseMoodQuery(r, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := s.engine.Analyze(r.Context(), query)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"analysis": analysis,
		"error":    nil,
	})
}

// handleRecommend is search with an optional prior analysis: when the
// client already has one from /api/analyze it is reused instead of paying
// for a second analysis call.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	query, err := parseMoodQuery(r, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var result recommend.Result
	if req.Analysis != nil && (req.Analysis.Mood != "" || len(req.Analysis.MatchedCriteria) > 0) {
		analysis := recommend.MoodAnalysis{
			Mood:            req.Analysis.Mood,
			MatchedCriteria: req.Analysis.MatchedCriteria,
		}
		result, err = s.engine.RecommendWithAnalysis(r.Context(), query, analysis)
	} else {
		result, err = s.engine.Recommend(r.Context(), query)
	}
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"songs":    result.Songs,
		"analysis": result.Analysis,
		"partial":  result.Partial,
		"error":    nil,
	})
}

// writeEngineError maps pipeline failures: provider outages surface as 502,
// anything else is a plain 500.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	var aiErr *moodai.ProviderError
	var catErr *catalog.ProviderError
	if errors.As(err, &aiErr) || errors.As(err, &catErr) {
		log.Printf("httpapi: provider failure: %v", err)
		writeError(w, http.StatusBadGateway, "music service unavailable, please try again")
		return
	}
	log.Printf("httpapi: recommendation failed: %v", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
