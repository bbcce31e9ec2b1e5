package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"manjaword/internal/grammar/model"
	"manjaword/pkg/apperr"
	"manjaword/pkg/logger"
)

// maxResponseBytes bounds how much of an upstream reply is read.
const maxResponseBytes = 8 << 20

// upstream reply shape; pointers tell a missing field from a zero value.
type ltResponse struct {
	Matches *[]ltMatch `json:"matches" validate:"required,dive"`
}

type ltMatch struct {
	Message      *string          `json:"message" validate:"required"`
	Offset       *int             `json:"offset" validate:"required,gte=0"`
	Length       *int             `json:"length" validate:"required,gte=0"`
	Replacements *[]ltReplacement `json:"replacements" validate:"required,dive"`
}

type ltReplacement struct {
	Value *string `json:"value" validate:"required"`
}

// GrammarService forwards text to a LanguageTool-compatible endpoint.
// Every failure collapses into apperr.ErrUnavailable; the cause is only logged.
type GrammarService struct {
	endpoint string
	language string
	client   *http.Client
	limiter  *rate.Limiter
	validate *validator.Validate
}

func NewGrammarService(endpoint, language string, rps float64, burst int, client *http.Client) *GrammarService {
	if client == nil {
		client = http.DefaultClient
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst < 1 {
		burst = 1
	}
	return &GrammarService{
		endpoint: endpoint,
		language: language,
		client:   client,
		limiter:  rate.NewLimiter(limit, burst),
		validate: validator.New(),
	}
}

func (s *GrammarService) Check(ctx context.Context, text string) (*model.GrammarResponse, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, s.unavailable("rate limiter", err)
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("language", s.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, s.unavailable("build request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, s.unavailable("transport", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, s.unavailable("read body", err)
	}

	var parsed ltResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, s.unavailable("decode", err)
	}
	if err := s.validate.Struct(parsed); err != nil {
		return nil, s.unavailable("response shape", err)
	}

	textLen := len(utf16.Encode([]rune(text)))
	matches := make([]model.GrammarMatch, 0, len(*parsed.Matches))
	for _, m := range *parsed.Matches {
		// Compared without adding so huge offsets cannot wrap around.
		if *m.Offset > textLen || *m.Length > textLen-*m.Offset {
			return nil, s.unavailable("response shape", errSpanOutOfRange)
		}
		replacements := make([]string, 0, len(*m.Replacements))
		for _, r := range *m.Replacements {
			replacements = append(replacements, *r.Value)
		}
		matches = append(matches, model.GrammarMatch{
			Message:      *m.Message,
			Offset:       *m.Offset,
			Length:       *m.Length,
			Replacements: replacements,
		})
	}
	return &model.GrammarResponse{Matches: matches}, nil
}

func (s *GrammarService) unavailable(stage string, err error) error {
	logger.Sugar.Warnf("Grammar check failed (%s): %v", stage, err)
	return apperr.ErrUnavailable
}
