package services

import (
	"consultgpt-pipeline/internal/config"
	"consultgpt-pipeline/internal/models"
	"consultgpt-pipeline/internal/pkg/logger"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// CrustDataService wraps the Crustdata company/people intelligence API. It is
// stateless aside from the held credential: no caching, no retries (retry
// policy, if any, belongs to the caller).
type CrustDataService struct {
	client *resty.Client
	config config.CrustDataConfig
	logger *logger.Logger
}

type HeadcountRange struct {
	Min int `json:"min,omitempty"`
	Max int `json:"max,omitempty"`
}

type GrowthRange struct {
	Min float64 `json:"min,omitempty"`
}

type FundingRange struct {
	Min float64 `json:"min,omitempty"`
}

// CompanyScreenFilters are the semantic filters the screener understands.
// Location is country-granularity only; city-level filtering is a documented
// limitation of the remote screener and must happen client-side after
// enrichment.
type CompanyScreenFilters struct {
	Headcount       *HeadcountRange
	HeadcountGrowth *GrowthRange
	Funding         *FundingRange
	Location        []string
	FoundedAfter    string
}

type CompanyEnrichParams struct {
	CompanyNames []string
	Domains      []string
	LinkedInURLs []string
	CompanyIDs   []int64
	Fields       string
}

type PeopleSearchFilters struct {
	CurrentCompany []string
	Title          []string
	Location       []string
	Skills         []string
	Limit          int
}

type PeopleEnrichParams struct {
	LinkedInURLs []string
	Emails       []string
}

type LinkedInPostsParams struct {
	PersonLinkedInURL string
	CompanyName       string
	CompanyDomain     string
	CompanyID         int64
	Limit             int
}

type CompanyPeopleParams struct {
	CompanyName       string
	CompanyLinkedInID string
	CompanyID         int64
}

type screenCondition struct {
	Column string `json:"column"`
	Type   string `json:"type"`
	Value  any    `json:"value"`
}

type screenRequest struct {
	Filters struct {
		Op         string            `json:"op"`
		Conditions []screenCondition `json:"conditions"`
	} `json:"filters"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

const (
	screenerResultCap  = 100
	peopleSearchCap    = 25
	columnHeadcount    = "headcount.linkedin_headcount"
	columnGrowthYoY    = "headcount.linkedin_headcount_total_growth_percent.yoy"
	columnTotalFunding = "funding_and_investment.crunchbase_total_investment_usd"
	columnHQCountry    = "hq_country"
	columnYearFounded  = "year_founded"
)

func NewCrustDataService(cfg config.CrustDataConfig, log *logger.Logger) (*CrustDataService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("Crustdata API key is required")
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "Token "+cfg.APIKey).
		SetRetryCount(0)

	service := &CrustDataService{
		client: client,
		config: cfg,
		logger: log,
	}

	log.Info("Crustdata service initialized",
		"base_url", cfg.BaseURL,
		"timeout", cfg.Timeout.String())

	return service, nil
}

// ScreenCompanies builds AND-combined predicate conditions from the supplied
// filters and posts them to the screener. Absent filters contribute no
// conditions; an empty filter set screens unconditionally.
func (service *CrustDataService) ScreenCompanies(ctx context.Context, filters CompanyScreenFilters) (json.RawMessage, error) {
	req := buildScreenRequest(filters)

	service.logger.Debug("Crustdata screen request",
		"conditions", len(req.Filters.Conditions),
		"count", req.Count)

	return service.post(ctx, "/screener/screen/", req)
}

func buildScreenRequest(filters CompanyScreenFilters) screenRequest {
	var conditions []screenCondition

	if filters.Headcount != nil && filters.Headcount.Min > 0 {
		conditions = append(conditions, screenCondition{
			Column: columnHeadcount, Type: ">=", Value: filters.Headcount.Min,
		})
	}

	if filters.Headcount != nil && filters.Headcount.Max > 0 {
		conditions = append(conditions, screenCondition{
			Column: columnHeadcount, Type: "<=", Value: filters.Headcount.Max,
		})
	}

	if filters.HeadcountGrowth != nil && filters.HeadcountGrowth.Min > 0 {
		conditions = append(conditions, screenCondition{
			Column: columnGrowthYoY, Type: ">=", Value: filters.HeadcountGrowth.Min,
		})
	}

	if filters.Funding != nil && filters.Funding.Min > 0 {
		conditions = append(conditions, screenCondition{
			Column: columnTotalFunding, Type: ">=", Value: filters.Funding.Min,
		})
	}

	if len(filters.Location) > 0 {
		// "(.)"  is the provider's case-insensitive contains operator. The
		// screener only understands countries here.
		conditions = append(conditions, screenCondition{
			Column: columnHQCountry, Type: "(.)", Value: filters.Location[0],
		})
	}

	if filters.FoundedAfter != "" {
		conditions = append(conditions, screenCondition{
			Column: columnYearFounded, Type: ">=", Value: filters.FoundedAfter,
		})
	}

	var req screenRequest
	req.Filters.Op = "and"
	req.Filters.Conditions = conditions
	if req.Filters.Conditions == nil {
		req.Filters.Conditions = []screenCondition{}
	}
	req.Offset = 0
	req.Count = screenerResultCap
	return req
}

// EnrichCompanies queries the enrichment endpoint by any combination of
// identifiers; how identifier types combine is left to the provider.
func (service *CrustDataService) EnrichCompanies(ctx context.Context, params CompanyEnrichParams) (json.RawMessage, error) {
	values := url.Values{}

	if len(params.CompanyNames) > 0 {
		values.Set("company_name", strings.Join(params.CompanyNames, ","))
	}
	if len(params.Domains) > 0 {
		values.Set("company_domain", strings.Join(params.Domains, ","))
	}
	if len(params.LinkedInURLs) > 0 {
		values.Set("company_linkedin_url", strings.Join(params.LinkedInURLs, ","))
	}
	if len(params.CompanyIDs) > 0 {
		values.Set("company_id", joinInt64(params.CompanyIDs))
	}
	if params.Fields != "" {
		values.Set("fields", params.Fields)
	}

	return service.get(ctx, "/screener/company", values)
}

// SearchPeople searches profiles by current company, title, and location.
// The result limit defaults to 25 and is capped at 25 by the provider.
func (service *CrustDataService) SearchPeople(ctx context.Context, filters PeopleSearchFilters) (json.RawMessage, error) {
	type personFilter struct {
		FilterType string   `json:"filter_type"`
		Type       string   `json:"type"`
		Value      []string `json:"value"`
	}

	var conditions []personFilter

	if len(filters.CurrentCompany) > 0 {
		conditions = append(conditions, personFilter{FilterType: "CURRENT_COMPANY", Type: "in", Value: filters.CurrentCompany})
	}
	if len(filters.Title) > 0 {
		conditions = append(conditions, personFilter{FilterType: "CURRENT_TITLE", Type: "in", Value: filters.Title})
	}
	if len(filters.Location) > 0 {
		conditions = append(conditions, personFilter{FilterType: "LOCATION", Type: "in", Value: filters.Location})
	}

	limit := filters.Limit
	if limit <= 0 || limit > peopleSearchCap {
		limit = peopleSearchCap
	}

	body := map[string]any{
		"filters": conditions,
		"limit":   limit,
		"page":    1,
	}
	if conditions == nil {
		body["filters"] = []personFilter{}
	}

	return service.post(ctx, "/screener/person/search", body)
}

func (service *CrustDataService) EnrichPeople(ctx context.Context, params PeopleEnrichParams) (json.RawMessage, error) {
	values := url.Values{}

	if len(params.LinkedInURLs) > 0 {
		values.Set("linkedin_profile_url", strings.Join(params.LinkedInURLs, ","))
	}
	if len(params.Emails) > 0 {
		values.Set("business_email", strings.Join(params.Emails, ","))
	}

	return service.get(ctx, "/screener/person/enrich", values)
}

func (service *CrustDataService) GetLinkedInPosts(ctx context.Context, params LinkedInPostsParams) (json.RawMessage, error) {
	values := url.Values{}

	if params.PersonLinkedInURL != "" {
		values.Set("person_linkedin_url", params.PersonLinkedInURL)
	}
	if params.CompanyName != "" {
		values.Set("company_name", params.CompanyName)
	}
	if params.CompanyDomain != "" {
		values.Set("company_domain", params.CompanyDomain)
	}
	if params.CompanyID != 0 {
		values.Set("company_id", strconv.FormatInt(params.CompanyID, 10))
	}
	if params.Limit > 0 {
		values.Set("limit", strconv.Itoa(params.Limit))
	}

	return service.get(ctx, "/screener/linkedin_posts", values)
}

// GetCompanyPeople lists people at a company. The provider mandates the
// s3_username parameter on every call, so it is always supplied from config.
func (service *CrustDataService) GetCompanyPeople(ctx context.Context, params CompanyPeopleParams) (json.RawMessage, error) {
	values := url.Values{}

	if params.CompanyLinkedInID != "" {
		values.Set("company_linkedin_id", params.CompanyLinkedInID)
	}
	if params.CompanyID != 0 {
		values.Set("company_id", strconv.FormatInt(params.CompanyID, 10))
	}
	if params.CompanyName != "" {
		values.Set("company_name", params.CompanyName)
	}
	values.Set("s3_username", service.config.S3Username)

	return service.get(ctx, "/screener/company/people", values)
}

func (service *CrustDataService) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	startTime := time.Now()

	resp, err := service.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)

	return service.handleResponse(path, resp, err, time.Since(startTime))
}

func (service *CrustDataService) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	startTime := time.Now()

	resp, err := service.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		Get(path)

	return service.handleResponse(path, resp, err, time.Since(startTime))
}

func (service *CrustDataService) handleResponse(path string, resp *resty.Response, err error, duration time.Duration) (json.RawMessage, error) {
	if err != nil {
		service.logger.LogService("crustdata", path, duration, nil, err)
		return nil, models.WrapExternalError("CRUSTDATA", err)
	}

	if resp.IsError() {
		apiErr := fmt.Errorf("Crustdata API error (%d): %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
		service.logger.LogService("crustdata", path, duration, map[string]any{
			"status": resp.StatusCode(),
		}, apiErr)
		return nil, models.NewExternalError(models.CodeCrustDataError, apiErr.Error()).
			WithMetadata("status", resp.StatusCode())
	}

	service.logger.LogService("crustdata", path, duration, map[string]any{
		"status":        resp.StatusCode(),
		"response_size": len(resp.Body()),
	}, nil)

	return json.RawMessage(resp.Body()), nil
}

// SelfTest exercises a screen and an enrichment probe; used by the selftest
// endpoint to verify connectivity and credentials.
func (service *CrustDataService) SelfTest(ctx context.Context) (map[string]any, error) {
	screen, err := service.ScreenCompanies(ctx, CompanyScreenFilters{
		Headcount:       &HeadcountRange{Min: 50},
		HeadcountGrowth: &GrowthRange{Min: 10},
		Location:        []string{"USA"},
	})
	if err != nil {
		return nil, fmt.Errorf("company screening failed: %w", err)
	}

	enriched, err := service.EnrichCompanies(ctx, CompanyEnrichParams{
		CompanyNames: []string{"Hubspot"},
		Fields:       "company_name,headcount,total_funding_raised_usd",
	})
	if err != nil {
		return nil, fmt.Errorf("company enrichment failed: %w", err)
	}

	return map[string]any{
		"companyScreening":  json.RawMessage(screen),
		"companyEnrichment": json.RawMessage(enriched),
	}, nil
}

func joinInt64(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}
