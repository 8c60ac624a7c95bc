package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/feeflow/feeflow/internal/cache"
	"github.com/feeflow/feeflow/internal/config"
	"github.com/feeflow/feeflow/internal/domain/student"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/logger"
	"github.com/hashicorp/go-retryablehttp"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client resolves student fee profiles from the directory service over HTTP.
// Transient failures are retried by the underlying client; a missing student
// maps to a not-found error, anything else to an http client error.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
	token   string
	cache   cache.Cache
	logger  *logger.Logger
	cfg     config.CacheConfig
}

// NewClient creates a directory client from configuration.
func NewClient(cfg *config.Configuration, log *logger.Logger, c cache.Cache) student.DirectoryService {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = cfg.Directory.RetryMax
	httpClient.HTTPClient.Timeout = cfg.Directory.Timeout
	httpClient.Logger = nil

	return &Client{
		http:    httpClient,
		baseURL: cfg.Directory.BaseURL,
		token:   cfg.Directory.AuthToken,
		cache:   c,
		logger:  log,
		cfg:     cfg.Cache,
	}
}

// GetStudentProfile fetches the fee profile for a student. Profiles are
// read-mostly, so hits are served from cache until expiry.
func (c *Client) GetStudentProfile(ctx context.Context, studentID string) (*student.FeeProfile, error) {
	if studentID == "" {
		return nil, ierr.NewError("student id is required").
			WithHint("Student ID is required").
			Mark(ierr.ErrValidation)
	}

	cacheKey := cache.GenerateKey(cache.PrefixStudentProfile, studentID)
	if cached, found := c.cache.Get(ctx, cacheKey); found {
		if profile, ok := cached.(*student.FeeProfile); ok {
			return profile, nil
		}
	}

	url := fmt.Sprintf("%s/api/v1/students/%s/fee-profile", c.baseURL, studentID)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to build directory request").
			Mark(ierr.ErrSystem)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Directory service is unreachable").
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ierr.NewError("student not found").
			WithHintf("Student %s does not exist in the directory", studentID).
			Mark(ierr.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Warnw("directory service returned error status",
			"student_id", studentID,
			"status_code", resp.StatusCode)
		return nil, ierr.NewError("directory request failed").
			WithHintf("Directory service returned status %d", resp.StatusCode).
			WithReportableDetails(map[string]any{
				"student_id":  studentID,
				"status_code": resp.StatusCode,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read directory response").
			Mark(ierr.ErrHTTPClient)
	}

	var profile student.FeeProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Directory returned an unparseable profile").
			Mark(ierr.ErrHTTPClient)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	c.cache.Set(ctx, cacheKey, &profile, c.cfg.Expiration)

	return &profile, nil
}
