package services

import (
	"consultgpt-pipeline/internal/models"
	"consultgpt-pipeline/internal/pkg/logger"
	"encoding/json"
	"regexp"
)

// PayloadExtractor pulls a structured {"text": ..., "component": ...} payload
// out of free-form model output. Extraction never fails the request: when no
// payload is found the caller keeps the raw text.
type PayloadExtractor struct {
	logger *logger.Logger
}

func NewPayloadExtractor(log *logger.Logger) *PayloadExtractor {
	return &PayloadExtractor{logger: log}
}

// Anchor patterns locate the opening brace of a candidate payload. The model
// occasionally emits single-quoted keys, hence the second pattern.
var payloadAnchors = []*regexp.Regexp{
	regexp.MustCompile(`\{\s*"text"\s*:`),
	regexp.MustCompile(`\{\s*'text'\s*:`),
}

type scanState int

const (
	scanNormal scanState = iota
	scanInString
	scanEscaped
)

// Extract scans the response for an embedded payload object. It returns the
// payload and true on success; any miss (no anchor, unbalanced braces,
// invalid JSON, missing fields) returns false without error.
func (extractor *PayloadExtractor) Extract(response string) (*models.StructuredPayload, bool) {
	start := -1
	for _, anchor := range payloadAnchors {
		if loc := anchor.FindStringIndex(response); loc != nil {
			start = loc[0]
			break
		}
	}
	if start == -1 {
		extractor.logger.Debug("no payload anchor in response", "response_length", len(response))
		return nil, false
	}

	candidate := response[start:]
	end := matchingBrace(candidate)
	if end == 0 {
		extractor.logger.Debug("unbalanced braces in candidate payload", "start", start)
		return nil, false
	}

	var payload models.StructuredPayload
	if err := json.Unmarshal([]byte(candidate[:end]), &payload); err != nil {
		extractor.logger.Debug("candidate payload is not valid JSON", "error", err.Error())
		return nil, false
	}

	if payload.Text == "" || payload.Component.Type == "" {
		extractor.logger.Debug("payload missing required fields",
			"has_text", payload.Text != "",
			"has_type", payload.Component.Type != "")
		return nil, false
	}

	extractor.logger.Info("component payload extracted", "component_type", string(payload.Component.Type))
	return &payload, true
}

// matchingBrace returns the exclusive end offset of the brace-balanced object
// opening at offset 0, or 0 when the braces never balance. String literals
// and escape sequences are skipped so braces inside values do not count.
func matchingBrace(s string) int {
	depth := 0
	state := scanNormal

	for i := 0; i < len(s); i++ {
		ch := s[i]

		switch state {
		case scanEscaped:
			state = scanInString

		case scanInString:
			switch ch {
			case '\\':
				state = scanEscaped
			case '"':
				state = scanNormal
			}

		case scanNormal:
			switch ch {
			case '"':
				state = scanInString
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return i + 1
				}
			}
		}
	}

	return 0
}
